package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"yatube/internal/custom_errors"
	follow_service "yatube/internal/domain/ports/input/follow"
	ports "yatube/internal/domain/ports/output"
	"yatube/internal/infrastructure/inbound/http/middleware"
)

type FollowHandler struct {
	follows follow_service.Service
	render  *Renderer
	log     ports.Logger
}

func NewFollowHandler(follows follow_service.Service, render *Renderer, log ports.Logger) *FollowHandler {
	return &FollowHandler{follows: follows, render: render, log: log}
}

// Follow subscribes the viewer to the author. Following yourself or an
// author you already follow changes nothing and lands on the profile.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "follow", h.follows.Follow)
}

// Unfollow removes the subscription if there is one.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "unfollow", h.follows.Unfollow)
}

func (h *FollowHandler) apply(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, int64, string) error) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.RedirectToLogin(w, r)
		return
	}
	username := mux.Vars(r)["username"]

	if err := fn(r.Context(), user.ID, username); err != nil {
		if !errors.Is(err, custom_errors.ErrConstraintViolation) {
			h.render.Error(w, r, err)
			return
		}
		h.log.Debug("Follow action rejected",
			slog.String("action", action),
			slog.Int64("user_id", user.ID),
			slog.String("author", username),
			slog.String("error", err.Error()))
	}

	http.Redirect(w, r, profilePath(username), http.StatusFound)
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
