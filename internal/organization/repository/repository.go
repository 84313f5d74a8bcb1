package repository

import (
	"context"

	membershipdomain "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error)
	CreateOrganization(ctx context.Context, o *domain.Org) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Org, error)
}

// OrgCreator atomically creates an organization with its owner membership.
type OrgCreator interface {
	CreateWithOwner(ctx context.Context, o *domain.Org, owner *membershipdomain.Membership) error
}
