// Package service implements task creation and filtered listing.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	membershipdomain "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/rbac"
	projectdomain "github.com/ShodmonX/taskflow-backend/internal/project/domain"
	"github.com/ShodmonX/taskflow-backend/internal/task/domain"
)

// Repository is the task persistence the service needs.
type Repository interface {
	Create(ctx context.Context, t *domain.Task) error
	List(ctx context.Context, f domain.Filter) ([]*domain.Task, int, error)
}

// ProjectGetter looks up projects by id.
type ProjectGetter interface {
	GetByID(ctx context.Context, id string) (*projectdomain.Project, error)
}

// Guard checks the caller's role in an org.
type Guard interface {
	RequireRole(ctx context.Context, orgID, userID string, allowed ...membershipdomain.Role) (*membershipdomain.Membership, error)
}

type Service struct {
	repo     Repository
	projects ProjectGetter
	guard    Guard
	now      func() time.Time
}

func New(repo Repository, projects ProjectGetter, guard Guard) *Service {
	return &Service{repo: repo, projects: projects, guard: guard, now: time.Now}
}

// CreateInput carries the fields of a new task.
type CreateInput struct {
	OrgID       string
	ProjectID   string
	Title       string
	Description string
	// Status defaults to TODO when empty.
	Status string
}

// Create adds a task to a project of in.OrgID. Any member may create.
func (s *Service) Create(ctx context.Context, requesterID string, in CreateInput) (*domain.Task, error) {
	if _, err := s.guard.RequireRole(ctx, in.OrgID, requesterID, rbac.ReadRoles...); err != nil {
		return nil, err
	}
	status := domain.Status(in.Status)
	if status == "" {
		status = domain.StatusTodo
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if err := s.requireProjectInOrg(ctx, in.ProjectID, in.OrgID); err != nil {
		return nil, err
	}
	t := &domain.Task{
		ID:          uuid.New().String(),
		OrgID:       in.OrgID,
		ProjectID:   in.ProjectID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      status,
		CreatedBy:   requesterID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns one page of f.OrgID's tasks. A zero limit means
// DefaultLimit; limits above MaxLimit are capped.
func (s *Service) List(ctx context.Context, requesterID string, f domain.Filter) (*domain.Page, error) {
	if _, err := s.guard.RequireRole(ctx, f.OrgID, requesterID, rbac.ReadRoles...); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if f.ProjectID != "" {
		if err := s.requireProjectInOrg(ctx, f.ProjectID, f.OrgID); err != nil {
			return nil, err
		}
	}
	switch {
	case f.Limit <= 0:
		f.Limit = domain.DefaultLimit
	case f.Limit > domain.MaxLimit:
		f.Limit = domain.MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &domain.Page{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *Service) requireProjectInOrg(ctx context.Context, projectID, orgID string) error {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p == nil || p.OrgID != orgID {
		return projectdomain.ErrProjectNotInOrg
	}
	return nil
}
