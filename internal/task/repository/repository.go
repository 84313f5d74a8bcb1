package repository

import (
	"context"

	"github.com/ShodmonX/taskflow-backend/internal/task/domain"
)

// Repository defines persistence for tasks.
type Repository interface {
	Create(ctx context.Context, t *domain.Task) error
	List(ctx context.Context, f domain.Filter) ([]*domain.Task, int, error)
}
