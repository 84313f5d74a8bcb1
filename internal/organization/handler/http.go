// Package handler serves /orgs.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ShodmonX/taskflow-backend/internal/organization/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
)

// OrgService is what the handler needs from the organization service.
type OrgService interface {
	Create(ctx context.Context, name, creatorID string) (*domain.Org, error)
	ListMine(ctx context.Context, userID string) ([]*domain.Org, error)
}

type Handler struct {
	svc OrgService
}

func New(svc OrgService) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type orgResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type listResponse struct {
	Items []orgResponse `json:"items"`
}

// Routes mounts the handlers on r. Callers must be authenticated.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	var req createRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	org, err := h.svc.Create(r.Context(), req.Name, userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(org))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgs, err := h.svc.ListMine(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	resp := listResponse{Items: make([]orgResponse, 0, len(orgs))}
	for _, o := range orgs {
		resp.Items = append(resp.Items, toResponse(o))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func toResponse(o *domain.Org) orgResponse {
	return orgResponse{ID: o.ID, Name: o.Name, CreatedBy: o.CreatedBy, CreatedAt: o.CreatedAt}
}
