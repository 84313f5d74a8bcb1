// Package service implements project operations behind the org role guard.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ShodmonX/taskflow-backend/internal/audit"
	membershipdomain "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/rbac"
	"github.com/ShodmonX/taskflow-backend/internal/project/domain"
)

// Repository is the project persistence the service needs.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Guard checks the caller's role in an org.
type Guard interface {
	RequireRole(ctx context.Context, orgID, userID string, allowed ...membershipdomain.Role) (*membershipdomain.Membership, error)
}

type Service struct {
	repo  Repository
	guard Guard
	audit audit.AuditLogger
	now   func() time.Time
}

// New returns a Service. auditLogger may be nil.
func New(repo Repository, guard Guard, auditLogger audit.AuditLogger) *Service {
	return &Service{repo: repo, guard: guard, audit: auditLogger, now: time.Now}
}

// Create adds a project to orgID. Owners and admins only.
func (s *Service) Create(ctx context.Context, orgID, requesterID, name, description string) (*domain.Project, error) {
	if _, err := s.guard.RequireRole(ctx, orgID, requesterID, rbac.ManageRoles...); err != nil {
		return nil, err
	}
	p := &domain.Project{
		ID:          uuid.New().String(),
		OrgID:       orgID,
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedBy:   requesterID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns orgID's projects, newest first. Any member may list.
func (s *Service) List(ctx context.Context, orgID, requesterID string) ([]*domain.Project, error) {
	if _, err := s.guard.RequireRole(ctx, orgID, requesterID, rbac.ReadRoles...); err != nil {
		return nil, err
	}
	return s.repo.ListByOrg(ctx, orgID)
}

// Get returns the project, or ErrProjectNotFound.
func (s *Service) Get(ctx context.Context, projectID string) (*domain.Project, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProjectNotFound
	}
	return p, nil
}

// Delete removes a project and its tasks. The caller must be an owner or
// admin of the project's org; an unknown project is 404 before any role check.
func (s *Service) Delete(ctx context.Context, projectID, requesterID string) error {
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireRole(ctx, p.OrgID, requesterID, rbac.ManageRoles...); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProjectNotFound
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, p.OrgID, requesterID, audit.ActionDelete, audit.ResourceProject,
			audit.Metadata(map[string]any{"project_id": projectID}))
	}
	return nil
}
