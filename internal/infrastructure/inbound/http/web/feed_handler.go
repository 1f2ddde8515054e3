package web

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"yatube/internal/application/pagecache"
	"yatube/internal/application/pagination"
	model "yatube/internal/domain/models"
	feed_service "yatube/internal/domain/ports/input/feed"
	"yatube/internal/infrastructure/inbound/http/middleware"
)

type PageMemoizer interface {
	Fetch(ctx context.Context, key string, render pagecache.RenderFunc) ([]byte, error)
}

type FeedHandler struct {
	feeds  feed_service.Service
	index  PageMemoizer
	render *Renderer
}

func NewFeedHandler(feeds feed_service.Service, index PageMemoizer, render *Renderer) *FeedHandler {
	return &FeedHandler{feeds: feeds, index: index, render: render}
}

// Index serves the global feed. Only the feed fragment is memoized, keyed
// by path and query, so the navigation bar always reflects the viewer.
func (h *FeedHandler) Index(w http.ResponseWriter, r *http.Request) {
	number := pagination.ParsePage(r.URL.Query().Get("page"))

	body, err := h.index.Fetch(r.Context(), r.URL.RequestURI(), func(ctx context.Context) ([]byte, error) {
		page, err := h.feeds.Index(ctx, number)
		if err != nil {
			return nil, err
		}
		return h.render.Fragment("feed", page)
	})
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	h.render.Page(w, http.StatusOK, pageIndex, &View{
		Title: "Latest posts",
		User:  middleware.UserFromContext(r.Context()),
		Data:  struct{ Feed template.HTML }{Feed: template.HTML(body)},
	})
}

func (h *FeedHandler) Group(w http.ResponseWriter, r *http.Request) {
	number := pagination.ParsePage(r.URL.Query().Get("page"))

	group, page, err := h.feeds.Group(r.Context(), mux.Vars(r)["slug"], number)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	h.render.Page(w, http.StatusOK, pageGroup, &View{
		Title: group.Title,
		User:  middleware.UserFromContext(r.Context()),
		Data: struct {
			Group *model.Group
			Page  *model.Page
		}{Group: group, Page: page},
	})
}

func (h *FeedHandler) Profile(w http.ResponseWriter, r *http.Request) {
	number := pagination.ParsePage(r.URL.Query().Get("page"))
	viewer := middleware.UserFromContext(r.Context())
	var viewerID int64
	if viewer != nil {
		viewerID = viewer.ID
	}

	profile, page, err := h.feeds.Profile(r.Context(), mux.Vars(r)["username"], viewerID, number)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	h.render.Page(w, http.StatusOK, pageProfile, &View{
		Title: "Profile of " + profile.Author.Username,
		User:  viewer,
		Data: struct {
			Profile *model.Profile
			Page    *model.Page
		}{Profile: profile, Page: page},
	})
}

// Follow serves the feed of authors the viewer follows. Route it behind
// middleware.RequireUser.
func (h *FeedHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.RedirectToLogin(w, r)
		return
	}
	number := pagination.ParsePage(r.URL.Query().Get("page"))

	page, err := h.feeds.Follow(r.Context(), user.ID, number)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	h.render.Page(w, http.StatusOK, pageFollow, &View{
		Title: "Follows",
		User:  user,
		Data:  struct{ Page *model.Page }{Page: page},
	})
}
