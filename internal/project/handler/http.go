// Package handler serves project routes.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	"github.com/ShodmonX/taskflow-backend/internal/project/domain"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
)

// ProjectService is what the handler needs from the project service.
type ProjectService interface {
	Create(ctx context.Context, orgID, requesterID, name, description string) (*domain.Project, error)
	List(ctx context.Context, orgID, requesterID string) ([]*domain.Project, error)
	Delete(ctx context.Context, projectID, requesterID string) error
}

type Handler struct {
	svc ProjectService
}

func New(svc ProjectService) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type projectResponse struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   *string   `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type listResponse struct {
	Items []projectResponse `json:"items"`
}

// OrgRoutes mounts the per-org routes on a router scoped to /orgs/{org_id}.
func (h *Handler) OrgRoutes(r chi.Router) {
	r.Post("/projects", h.create)
	r.Get("/projects", h.list)
}

// Delete handles DELETE /projects/{project_id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	projectID, err := httpx.UUIDParam(r, "project_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), projectID, userID); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgID, err := httpx.UUIDParam(r, "org_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req createRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	p, err := h.svc.Create(r.Context(), orgID, userID, req.Name, req.Description)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgID, err := httpx.UUIDParam(r, "org_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	projects, err := h.svc.List(r.Context(), orgID, userID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	resp := listResponse{Items: make([]projectResponse, 0, len(projects))}
	for _, p := range projects {
		resp.Items = append(resp.Items, toResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func toResponse(p *domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		OrgID:       p.OrgID,
		Name:        p.Name,
		Description: optional(p.Description),
		CreatedBy:   optional(p.CreatedBy),
		CreatedAt:   p.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
