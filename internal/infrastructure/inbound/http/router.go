package http_server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	ports "yatube/internal/domain/ports/output"
	"yatube/internal/infrastructure/inbound/http/middleware"
	"yatube/internal/infrastructure/inbound/http/web"
)

type Handlers struct {
	Feed   *web.FeedHandler
	Post   *web.PostHandler
	Follow *web.FollowHandler
	Auth   *web.AuthHandler
}

type RouterConfig struct {
	Handlers      Handlers
	Renderer      *web.Renderer
	Authenticator middleware.Authenticator
	CookieName    string
	MediaRoot     string
	MediaURL      string
	Log           ports.Logger
	Metrics       ports.MetricsProvider
}

// NewRouter wires every page route. Paths end with a slash; requests
// without it are redirected.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	r := mux.NewRouter().StrictSlash(true)
	r.Use(middleware.Metrics(cfg.Metrics))

	r.HandleFunc("/", h.Feed.Index).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/group/{slug}/", h.Feed.Group).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/follow/", middleware.RequireUser(h.Feed.Follow)).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/profile/{username}/", h.Feed.Profile).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/profile/{username}/follow/", middleware.RequireUser(h.Follow.Follow)).
		Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/profile/{username}/unfollow/", middleware.RequireUser(h.Follow.Unfollow)).
		Methods(http.MethodGet, http.MethodPost)

	r.HandleFunc("/create/", middleware.RequireUser(h.Post.Create)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/posts/{post_id:[0-9]+}/", h.Post.Detail).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/posts/{post_id:[0-9]+}/edit/", middleware.RequireUser(h.Post.Edit)).
		Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/posts/{post_id:[0-9]+}/comment/", middleware.RequireUser(h.Post.Comment)).
		Methods(http.MethodGet, http.MethodPost)

	r.HandleFunc("/auth/signup/", h.Auth.Signup).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/auth/login/", h.Auth.Login).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/auth/logout/", h.Auth.Logout).Methods(http.MethodPost)

	if cfg.MediaRoot != "" {
		prefix := "/" + strings.Trim(cfg.MediaURL, "/") + "/"
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.MediaRoot)))).
			Methods(http.MethodGet, http.MethodHead)
	}

	r.NotFoundHandler = cfg.Renderer.NotFoundHandler()

	var handler http.Handler = r
	handler = middleware.Logging(cfg.Log)(handler)
	handler = middleware.Authenticate(cfg.Authenticator, cfg.CookieName, cfg.Log)(handler)
	handler = middleware.Recovery(cfg.Log, cfg.Renderer.ServerErrorHandler())(handler)
	return handler
}
