// Package handler serves organization members, invites and joins.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
)

// MembershipService is what the handler needs from the membership service.
type MembershipService interface {
	List(ctx context.Context, orgID, requesterID string) ([]*domain.Membership, error)
	Add(ctx context.Context, orgID, requesterID, userID, role string) (*domain.Membership, error)
	ChangeRole(ctx context.Context, orgID, requesterID, userID, role string) error
	Remove(ctx context.Context, orgID, requesterID, userID string) error
	CreateInvite(ctx context.Context, orgID, requesterID, role string, ttl time.Duration) (string, time.Duration, error)
	Join(ctx context.Context, token, userID string) (string, error)
}

type Handler struct {
	svc MembershipService
}

func New(svc MembershipService) *Handler {
	return &Handler{svc: svc}
}

type addRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

// maxTTLSeconds caps ttl_seconds before it becomes a Duration; the service
// then clamps to the configured invite window.
const maxTTLSeconds = int64(365 * 24 * time.Hour / time.Second)

type inviteRequest struct {
	Role       string `json:"role" validate:"required"`
	TTLSeconds int64  `json:"ttl_seconds" validate:"gte=0"`
}

type inviteResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type joinRequest struct {
	Token string `json:"token" validate:"required"`
}

type memberResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrgID     string    `json:"org_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type listResponse struct {
	Items []memberResponse `json:"items"`
}

// OrgRoutes mounts the per-org routes on a router scoped to /orgs/{org_id}.
func (h *Handler) OrgRoutes(r chi.Router) {
	r.Get("/members", h.list)
	r.Post("/members", h.add)
	r.Patch("/members/{user_id}", h.changeRole)
	r.Delete("/members/{user_id}", h.remove)
	r.Post("/invites", h.createInvite)
}

// Join handles POST /orgs/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	var req joinRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	orgID, err := h.svc.Join(r.Context(), req.Token, userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"org_id": orgID})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgID, err := httpx.UUIDParam(r, "org_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	members, err := h.svc.List(r.Context(), orgID, userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	resp := listResponse{Items: make([]memberResponse, 0, len(members))}
	for _, m := range members {
		resp.Items = append(resp.Items, toResponse(m))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgID, err := httpx.UUIDParam(r, "org_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req addRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	m, err := h.svc.Add(r.Context(), orgID, userID, req.UserID, req.Role)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgID, memberID, err := orgAndUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req roleRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.svc.ChangeRole(r.Context(), orgID, userID, memberID, req.Role); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.StatusOK)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgID, memberID, err := orgAndUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.svc.Remove(r.Context(), orgID, userID, memberID); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.StatusOK)
}

func (h *Handler) createInvite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgID, err := httpx.UUIDParam(r, "org_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req inviteRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	ttl := time.Duration(min(req.TTLSeconds, maxTTLSeconds)) * time.Second
	token, effective, err := h.svc.CreateInvite(r.Context(), orgID, userID, req.Role, ttl)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, inviteResponse{Token: token, ExpiresIn: int(effective / time.Second)})
}

func orgAndUser(r *http.Request) (string, string, error) {
	orgID, err := httpx.UUIDParam(r, "org_id")
	if err != nil {
		return "", "", err
	}
	userID, err := httpx.UUIDParam(r, "user_id")
	if err != nil {
		return "", "", err
	}
	return orgID, userID, nil
}

func toResponse(m *domain.Membership) memberResponse {
	return memberResponse{ID: m.ID, UserID: m.UserID, OrgID: m.OrgID, Role: string(m.Role), CreatedAt: m.CreatedAt}
}
