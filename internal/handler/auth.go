package handler

import (
	"net/http"

	"oyna-console/internal/logging"
	"oyna-console/internal/middleware"
	"oyna-console/internal/model"
	"oyna-console/internal/service"
	"oyna-console/internal/validation"
	"oyna-console/pkg/apierror"
	"oyna-console/pkg/response"
)

// CookieConfig describes the user descriptor cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles console sign-in and sign-out.
type AuthHandler struct {
	auth     *service.AuthService
	validate *validation.Validator
	cookie   CookieConfig
	log      logging.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, validate *validation.Validator, cookie CookieConfig, log logging.Logger) *AuthHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &AuthHandler{auth: auth, validate: validate, cookie: cookie, log: log}
}

// LoginRequest is the console login form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	User      *model.Profile `json:"user"`
	ExpiresIn int            `json:"expires_in"`
}

// Login handles POST /console/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.validate.DecodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	profile, descriptor, err := h.auth.Login(r.Context(), sess, req.Email, req.Password)
	if err != nil {
		remoteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    descriptor,
		Path:     "/",
		MaxAge:   h.auth.DescriptorTTL(),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	response.OK(w, LoginResponse{User: profile, ExpiresIn: h.auth.DescriptorTTL()})
}

// Logout handles POST /console/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	if err := sess.Logout(r.Context()); err != nil {
		h.log.Error(r.Context(), "logout failed",
			"request_id", middleware.GetRequestID(r.Context()), "error", err)
		response.Error(w, apierror.ServiceUnavailable(""))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	response.NoContent(w)
}

// Me handles GET /console/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	if profile, ok := sess.Profile(); ok {
		response.OK(w, profile)
		return
	}
	if !sess.Authenticated() {
		response.Error(w, apierror.Unauthorized(""))
		return
	}

	profile, err := sess.Refresh(r.Context())
	if err != nil {
		remoteError(w, err)
		return
	}
	response.OK(w, profile)
}

// Unauthorized handles GET /unauthorized
func (h *AuthHandler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	response.Error(w, apierror.Forbidden("Bu sayfaya erişim yetkiniz yok."))
}
