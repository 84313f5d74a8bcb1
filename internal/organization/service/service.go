// Package service creates organizations and lists a user's organizations.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	membershipdomain "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/organization/domain"
)

// Lister lists a user's organizations.
type Lister interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Org, error)
}

// Creator writes an organization together with its owner membership.
type Creator interface {
	CreateWithOwner(ctx context.Context, o *domain.Org, owner *membershipdomain.Membership) error
}

type Service struct {
	orgs    Lister
	creator Creator
	now     func() time.Time
}

func New(orgs Lister, creator Creator) *Service {
	return &Service{orgs: orgs, creator: creator, now: time.Now}
}

// Create makes a new organization owned by creatorID.
func (s *Service) Create(ctx context.Context, name, creatorID string) (*domain.Org, error) {
	now := s.now().UTC()
	org := &domain.Org{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		CreatedBy: creatorID,
		CreatedAt: now,
	}
	owner := &membershipdomain.Membership{
		ID:        uuid.New().String(),
		UserID:    creatorID,
		OrgID:     org.ID,
		Role:      membershipdomain.RoleOwner,
		CreatedAt: now,
	}
	if err := s.creator.CreateWithOwner(ctx, org, owner); err != nil {
		return nil, err
	}
	return org, nil
}

// ListMine returns the organizations userID belongs to, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]*domain.Org, error) {
	return s.orgs.ListByUser(ctx, userID)
}
