package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	model "yatube/internal/domain/models"
	ports "yatube/internal/domain/ports/output"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	pageIndex       = "index.html"
	pageGroup       = "group.html"
	pageProfile     = "profile.html"
	pageFollow      = "follow.html"
	pagePostDetail  = "post_detail.html"
	pagePostForm    = "post_form.html"
	pageLogin       = "login.html"
	pageSignup      = "signup.html"
	pageNotFound    = "not_found.html"
	pageServerError = "server_error.html"
)

var pageNames = []string{
	pageIndex, pageGroup, pageProfile, pageFollow, pagePostDetail,
	pagePostForm, pageLogin, pageSignup, pageNotFound, pageServerError,
}

// View is the root object every page template is executed with.
type View struct {
	Title string
	User  *model.User
	Data  any
}

type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
	log       ports.Logger
}

func NewRenderer(mediaURL string, log ports.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"date": func(ts pgtype.Timestamptz) string {
			if !ts.Valid {
				return ""
			}
			return ts.Time.Format("2 Jan 2006")
		},
		"isodate": func(ts pgtype.Timestamptz) string {
			if !ts.Valid {
				return ""
			}
			return ts.Time.Format("2006-01-02T15:04:05Z07:00")
		},
		"media": func(path *string) string {
			if path == nil {
				return ""
			}
			return strings.TrimSuffix(mediaURL, "/") + "/" + strings.TrimPrefix(*path, "/")
		},
	}

	base, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base template: %w", err)
		}
		if _, err := t.ParseFS(templatesFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages, fragments: base, log: log}, nil
}

// Fragment renders one of the shared partials, e.g. "feed".
func (r *Renderer) Fragment(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render fragment %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Page renders a full page. Output is buffered so a template error can still
// turn into a clean 500.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, view *View) {
	t, ok := r.pages[name]
	if !ok {
		r.log.Error("Unknown template", slog.String("name", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", view); err != nil {
		r.log.Error("Failed to render page", slog.String("name", name), slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.log.Debug("Failed to write response", slog.String("error", err.Error()))
	}
}
