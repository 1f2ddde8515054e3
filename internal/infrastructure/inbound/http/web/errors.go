package web

import (
	"errors"
	"log/slog"
	"net/http"

	"yatube/internal/custom_errors"
	"yatube/internal/infrastructure/inbound/http/middleware"
)

// Error turns a service error into a response: a 404 page for missing
// objects, a login redirect for permission failures and a 500 page for the
// rest.
func (r *Renderer) Error(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, custom_errors.ErrNotFound):
		r.NotFound(w, req)
	case errors.Is(err, custom_errors.ErrPermission):
		middleware.RedirectToLogin(w, req)
	default:
		r.log.Error("Request failed",
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()))
		r.ServerError(w, req)
	}
}

func (r *Renderer) NotFound(w http.ResponseWriter, req *http.Request) {
	r.Page(w, http.StatusNotFound, pageNotFound, &View{
		Title: "Page not found",
		User:  middleware.UserFromContext(req.Context()),
		Data:  struct{ Path string }{Path: req.URL.Path},
	})
}

func (r *Renderer) ServerError(w http.ResponseWriter, req *http.Request) {
	r.Page(w, http.StatusInternalServerError, pageServerError, &View{
		Title: "Server error",
		User:  middleware.UserFromContext(req.Context()),
	})
}

func (r *Renderer) NotFoundHandler() http.Handler {
	return http.HandlerFunc(r.NotFound)
}

func (r *Renderer) ServerErrorHandler() http.Handler {
	return http.HandlerFunc(r.ServerError)
}
