package repository

import (
	"context"

	"github.com/ShodmonX/taskflow-backend/internal/project/domain"
)

// Repository defines persistence for projects.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) (bool, error)
}
