package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	ports "yatube/internal/domain/ports/output"
)

const LoginPath = "/auth/login/"

type contextKey struct{}

var userKey = contextKey{}

// Authenticator resolves the user behind a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the signed-in user or nil for guests.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// Authenticate attaches the user of a valid session cookie to the request
// context. Invalid or expired cookies are cleared and the request continues
// as a guest.
func Authenticate(auth Authenticator, cookieName string, log ports.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, custom_errors.ErrUnauthenticated) {
					log.Warn("Failed to resolve session", slog.String("error", err.Error()))
				}
				http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireUser redirects guests to the login page, remembering where they
// were going.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			RedirectToLogin(w, r)
			return
		}
		next(w, r)
	}
}

func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}
