package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"yatube/internal/custom_errors"
	user_service "yatube/internal/domain/ports/input/user"
	"yatube/internal/infrastructure/inbound/http/middleware"
)

// SessionCookie describes the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	accounts user_service.Service
	validate *validator.Validate
	render   *Renderer
	cookie   SessionCookie
}

func NewAuthHandler(accounts user_service.Service, validate *validator.Validate, render *Renderer, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{accounts: accounts, validate: validate, render: render, cookie: cookie}
}

type authFormData struct {
	Username string
	Next     string
	Errors   formErrors
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.show(w, r, pageSignup, "Sign up", &authFormData{})
		return
	}

	form := signupForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	data := &authFormData{Username: form.Username}
	if err := h.validate.Struct(form); err != nil {
		data.Errors = fieldErrors(err)
		h.show(w, r, pageSignup, "Sign up", data)
		return
	}

	user, err := h.accounts.Register(r.Context(), form.Username, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUsernameTaken):
			data.Errors = formErrors{"username": "A user with that username already exists."}
		case errors.Is(err, custom_errors.ErrValidation):
			data.Errors = formErrors{"form": "The form is invalid."}
		default:
			h.render.Error(w, r, err)
			return
		}
		h.show(w, r, pageSignup, "Sign up", data)
		return
	}

	token, err := h.accounts.IssueToken(user)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.setSession(w, token)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.show(w, r, pageLogin, "Log in", &authFormData{Next: safeNext(r.URL.Query().Get("next"))})
		return
	}

	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	data := &authFormData{Username: form.Username, Next: safeNext(r.PostFormValue("next"))}
	if err := h.validate.Struct(form); err != nil {
		data.Errors = fieldErrors(err)
		h.show(w, r, pageLogin, "Log in", data)
		return
	}

	_, token, err := h.accounts.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, custom_errors.ErrInvalidCredentials) {
			data.Errors = formErrors{"form": "Please enter a correct username and password."}
			h.show(w, r, pageLogin, "Log in", data)
			return
		}
		h.render.Error(w, r, err)
		return
	}

	h.setSession(w, token)
	http.Redirect(w, r, data.Next, http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) show(w http.ResponseWriter, r *http.Request, page, title string, data *authFormData) {
	h.render.Page(w, http.StatusOK, page, &View{
		Title: title,
		User:  middleware.UserFromContext(r.Context()),
		Data:  data,
	})
}

func (h *AuthHandler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext keeps redirects on this site: only absolute local paths pass.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
