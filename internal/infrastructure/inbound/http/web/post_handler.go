package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	group_service "yatube/internal/domain/ports/input/group"
	post_service "yatube/internal/domain/ports/input/post"
	ports "yatube/internal/domain/ports/output"
	"yatube/internal/infrastructure/inbound/http/middleware"
)

type PostHandler struct {
	posts     post_service.Service
	groups    group_service.Service
	validate  *validator.Validate
	render    *Renderer
	maxUpload int64
	log       ports.Logger
}

func NewPostHandler(
	posts post_service.Service,
	groups group_service.Service,
	validate *validator.Validate,
	render *Renderer,
	maxUpload int64,
	log ports.Logger,
) *PostHandler {
	return &PostHandler{
		posts:     posts,
		groups:    groups,
		validate:  validate,
		render:    render,
		maxUpload: maxUpload,
		log:       log,
	}
}

type postFormData struct {
	IsEdit bool
	Form   postForm
	Groups []*model.Group
	Errors formErrors
}

func (h *PostHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		h.render.NotFound(w, r)
		return
	}

	view, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	h.render.Page(w, http.StatusOK, pagePostDetail, &View{
		Title: "Post " + view.Post.Post.Excerpt(),
		User:  middleware.UserFromContext(r.Context()),
		Data:  struct{ View *model.PostView }{View: view},
	})
}

// Create shows the new post form and publishes it, redirecting the author to
// their profile.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.RedirectToLogin(w, r)
		return
	}

	if r.Method != http.MethodPost {
		h.showForm(w, r, http.StatusOK, &postFormData{})
		return
	}

	form, image, errs := h.readPostForm(w, r)
	if len(errs) > 0 {
		h.showForm(w, r, http.StatusOK, &postFormData{Form: form, Errors: errs})
		return
	}
	groupID, _ := form.groupID()

	_, err := h.posts.CreatePost(r.Context(), &model.CreatePostDTO{
		AuthorID: user.ID,
		Text:     form.Text,
		GroupID:  groupID,
		Image:    image,
	})
	if err != nil {
		if errs := serviceFormErrors(err); errs != nil {
			h.showForm(w, r, http.StatusOK, &postFormData{Form: form, Errors: errs})
			return
		}
		h.render.Error(w, r, err)
		return
	}

	http.Redirect(w, r, profilePath(user.Username), http.StatusFound)
}

// Edit lets the author change a post. Anyone else is sent back to the post
// page without any change.
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.RedirectToLogin(w, r)
		return
	}
	id, ok := postID(r)
	if !ok {
		h.render.NotFound(w, r)
		return
	}

	view, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	post := view.Post.Post
	if post.AuthorID != user.ID {
		http.Redirect(w, r, detailPath(id), http.StatusFound)
		return
	}

	if r.Method != http.MethodPost {
		form := postForm{Text: post.Text}
		if post.GroupID != nil {
			form.Group = strconv.FormatInt(*post.GroupID, 10)
		}
		h.showForm(w, r, http.StatusOK, &postFormData{IsEdit: true, Form: form})
		return
	}

	form, image, errs := h.readPostForm(w, r)
	if len(errs) > 0 {
		h.showForm(w, r, http.StatusOK, &postFormData{IsEdit: true, Form: form, Errors: errs})
		return
	}
	groupID, _ := form.groupID()

	_, err = h.posts.UpdatePost(r.Context(), user.ID, id, &model.UpdatePostDTO{
		Text:    form.Text,
		GroupID: groupID,
		Image:   image,
	})
	if err != nil {
		if errors.Is(err, custom_errors.ErrForbidden) {
			http.Redirect(w, r, detailPath(id), http.StatusFound)
			return
		}
		if errs := serviceFormErrors(err); errs != nil {
			h.showForm(w, r, http.StatusOK, &postFormData{IsEdit: true, Form: form, Errors: errs})
			return
		}
		h.render.Error(w, r, err)
		return
	}

	http.Redirect(w, r, detailPath(id), http.StatusFound)
}

// Comment adds a comment and returns to the post. An empty comment is
// dropped silently.
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.RedirectToLogin(w, r)
		return
	}
	id, ok := postID(r)
	if !ok {
		h.render.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Redirect(w, r, detailPath(id), http.StatusFound)
		return
	}

	form := commentForm{Text: strings.TrimSpace(r.PostFormValue("text"))}
	if err := h.validate.Struct(form); err != nil {
		http.Redirect(w, r, detailPath(id), http.StatusFound)
		return
	}

	_, err := h.posts.AddComment(r.Context(), &model.CreateCommentDTO{
		PostID:   id,
		AuthorID: user.ID,
		Text:     form.Text,
	})
	if err != nil && !errors.Is(err, custom_errors.ErrValidation) {
		h.render.Error(w, r, err)
		return
	}

	http.Redirect(w, r, detailPath(id), http.StatusFound)
}

func (h *PostHandler) showForm(w http.ResponseWriter, r *http.Request, status int, data *postFormData) {
	groups, err := h.groups.ListGroups(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	data.Groups = groups

	title := "New post"
	if data.IsEdit {
		title = "Edit post"
	}
	h.render.Page(w, status, pagePostForm, &View{
		Title: title,
		User:  middleware.UserFromContext(r.Context()),
		Data:  data,
	})
}

// readPostForm parses a multipart post form. Validation problems come back
// as field errors, never as an error value.
func (h *PostHandler) readPostForm(w http.ResponseWriter, r *http.Request) (postForm, *model.ImageUpload, formErrors) {
	// Leave room for the text fields next to the image itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return postForm{}, nil, formErrors{"image": "The image is too large."}
		}
		h.log.Debug("Failed to parse post form", slog.String("error", err.Error()))
		return postForm{}, nil, formErrors{"form": "The form could not be read."}
	}

	form := postForm{
		Text:  strings.TrimSpace(r.FormValue("text")),
		Group: strings.TrimSpace(r.FormValue("group")),
	}
	errs := formErrors{}
	if err := h.validate.Struct(form); err != nil {
		errs = fieldErrors(err)
	}
	if _, err := form.groupID(); err != nil {
		errs["group"] = "Select a valid choice."
	}

	image, msg := h.readImage(r)
	if msg != "" {
		errs["image"] = msg
	}
	return form, image, errs
}

func (h *PostHandler) readImage(r *http.Request) (*model.ImageUpload, string) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, ""
		}
		return nil, "Upload a valid image."
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		h.log.Debug("Failed to read upload", slog.String("error", err.Error()))
		return nil, "Upload a valid image."
	}
	if int64(len(data)) > h.maxUpload {
		return nil, "The image is too large."
	}
	if len(data) == 0 {
		return nil, ""
	}
	return &model.ImageUpload{Filename: header.Filename, Data: data}, ""
}

// serviceFormErrors attaches validation errors raised by the post service
// to the field they concern. It returns nil for any other error.
func serviceFormErrors(err error) formErrors {
	switch {
	case errors.Is(err, custom_errors.ErrEmptyText):
		return formErrors{"text": "This field is required."}
	case errors.Is(err, custom_errors.ErrInvalidGroup):
		return formErrors{"group": "Select a valid choice."}
	case errors.Is(err, custom_errors.ErrImageTooLarge):
		return formErrors{"image": "The image is too large."}
	case errors.Is(err, custom_errors.ErrInvalidImage):
		return formErrors{"image": "Upload a valid image."}
	case errors.Is(err, custom_errors.ErrValidation):
		return formErrors{"form": "The form is invalid."}
	}
	return nil
}

func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["post_id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func detailPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/"
}
