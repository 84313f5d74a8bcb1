// Package handler exposes the auth service over HTTP under /auth.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ShodmonX/taskflow-backend/internal/identity/service"
	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
	userdomain "github.com/ShodmonX/taskflow-backend/internal/user/domain"
)

// AuthService is what the handler needs from the auth service.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Refresh(ctx context.Context, raw string) (*service.AuthResult, error)
	Logout(ctx context.Context, raw string) error
	Me(ctx context.Context, userID string) (*userdomain.User, error)
}

// CookieConfig controls the refresh cookie.
type CookieConfig struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// Handler serves the /auth routes.
type Handler struct {
	svc    AuthService
	cookie CookieConfig
}

// New returns a Handler.
func New(svc AuthService, cookie CookieConfig) *Handler {
	return &Handler{svc: svc, cookie: cookie}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type meResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	IsActive    bool   `json:"is_active"`
	IsVerified  bool   `json:"is_verified"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Routes mounts the handlers on r. authn guards /me.
func (h *Handler) Routes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/refresh", h.refresh)
	r.Post("/logout", h.logout)
	r.With(authn).Get("/me", h.me)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.svc.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bearer(res.AccessToken))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.setRefreshCookie(w, res.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, bearer(res.AccessToken))
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Refresh(r.Context(), h.refreshCookie(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.setRefreshCookie(w, res.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, bearer(res.AccessToken))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), h.refreshCookie(r)); err != nil {
		httpx.WriteError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
	httpx.WriteJSON(w, http.StatusOK, httpx.StatusOK)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, middleware.ErrNotAuthenticated)
		return
	}
	u, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, meResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		IsSuperuser: u.IsSuperuser,
	})
}

func (h *Handler) refreshCookie(r *http.Request) string {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, raw string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    raw,
		Path:     h.cookie.Path,
		MaxAge:   int(h.cookie.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}

func bearer(token string) tokenResponse {
	return tokenResponse{AccessToken: token, TokenType: "bearer"}
}
