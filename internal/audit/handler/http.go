// Package handler serves the per-org audit log.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ShodmonX/taskflow-backend/internal/audit/domain"
	membershipdomain "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	"github.com/ShodmonX/taskflow-backend/internal/platform/rbac"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Lister reads audit entries for one org, newest first.
type Lister interface {
	ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]*domain.AuditLog, error)
}

// Guard checks the caller's role in an org.
type Guard interface {
	RequireRole(ctx context.Context, orgID, userID string, allowed ...membershipdomain.Role) (*membershipdomain.Membership, error)
}

type Handler struct {
	logs  Lister
	guard Guard
}

func New(logs Lister, guard Guard) *Handler {
	return &Handler{logs: logs, guard: guard}
}

type listResponse struct {
	Items  []*domain.AuditLog `json:"items"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// OrgRoutes mounts GET /audit-logs on a router scoped to /orgs/{org_id}.
// Only owners and admins may read the log.
func (h *Handler) OrgRoutes(r chi.Router) {
	r.Get("/audit-logs", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orgID, err := httpx.UUIDParam(r, "org_id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	userID, _ := middleware.UserID(r.Context())
	if _, err := h.guard.RequireRole(r.Context(), orgID, userID, rbac.ManageRoles...); err != nil {
		httpx.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), defaultLimit, 1, maxLimit, "limit")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	offset, err := intParam(q.Get("offset"), 0, 0, -1, "offset")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	items, err := h.logs.ListByOrg(r.Context(), orgID, limit, offset)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if items == nil {
		items = []*domain.AuditLog{}
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Items: items, Limit: limit, Offset: offset})
}

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
