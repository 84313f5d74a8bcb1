// Package handler serves task routes.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
	"github.com/ShodmonX/taskflow-backend/internal/task/domain"
	"github.com/ShodmonX/taskflow-backend/internal/task/service"
)

// TaskService is what the handler needs from the task service.
type TaskService interface {
	Create(ctx context.Context, requesterID string, in service.CreateInput) (*domain.Task, error)
	List(ctx context.Context, requesterID string, f domain.Filter) (*domain.Page, error)
}

type Handler struct {
	svc TaskService
}

func New(svc TaskService) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Status      string `json:"status"`
}

type taskResponse struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedBy   *string   `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type listResponse struct {
	Items  []taskResponse `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Total  int            `json:"total"`
}

// OrgRoutes mounts the per-org routes on a router scoped to /orgs/{org_id}.
func (h *Handler) OrgRoutes(r chi.Router) {
	r.Post("/projects/{project_id}/tasks", h.create)
	r.Get("/tasks", h.list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgID, err := httpx.UUIDParam(r, "org_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	projectID, err := httpx.UUIDParam(r, "project_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req createRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	t, err := h.svc.Create(r.Context(), userID, service.CreateInput{
		OrgID:       orgID,
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	orgID, err := httpx.UUIDParam(r, "org_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	var projectID string
	if raw := q.Get("project_id"); raw != "" {
		if projectID, err = httpx.ParseUUID(raw, "project_id"); err != nil {
			httpx.WriteError(w, err)
			return
		}
	}
	limit, err := intParam(q.Get("limit"), domain.DefaultLimit, 1, domain.MaxLimit, "limit")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	offset, err := intParam(q.Get("offset"), 0, 0, -1, "offset")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	page, err := h.svc.List(r.Context(), userID, domain.Filter{
		OrgID:     orgID,
		ProjectID: projectID,
		Status:    domain.Status(q.Get("status")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	resp := listResponse{
		Items:  make([]taskResponse, 0, len(page.Items)),
		Limit:  page.Limit,
		Offset: page.Offset,
		Total:  page.Total,
	}
	for _, t := range page.Items {
		resp.Items = append(resp.Items, toResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// intParam parses an optional query integer within [lo, hi]; hi < 0 means
// no upper bound.
func intParam(raw string, def, lo, hi int, name string) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || (hi >= 0 && n > hi) {
		return 0, apperr.Invalid("query parameter '" + name + "' is out of range")
	}
	return n, nil
}

func toResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		OrgID:       t.OrgID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: optional(t.Description),
		Status:      string(t.Status),
		CreatedBy:   optional(t.CreatedBy),
		CreatedAt:   t.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
