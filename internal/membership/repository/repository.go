package repository

import (
	"context"

	"github.com/ShodmonX/taskflow-backend/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	CreateMembership(ctx context.Context, m *domain.Membership) error
	UpdateRole(ctx context.Context, orgID, userID string, role domain.Role) (bool, error)
	DeleteByUserAndOrg(ctx context.Context, orgID, userID string) (bool, error)
}
