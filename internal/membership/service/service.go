// Package service manages organization members and invites. Every operation
// passes the caller through the role guard first.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ShodmonX/taskflow-backend/internal/audit"
	"github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/rbac"
	userdomain "github.com/ShodmonX/taskflow-backend/internal/user/domain"
)

// Repository is the membership persistence the service needs.
type Repository interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	CreateMembership(ctx context.Context, m *domain.Membership) error
	UpdateRole(ctx context.Context, orgID, userID string, role domain.Role) (bool, error)
	DeleteByUserAndOrg(ctx context.Context, orgID, userID string) (bool, error)
}

// UserGetter looks up users by id.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Guard checks the caller's role in an org.
type Guard interface {
	RequireRole(ctx context.Context, orgID, userID string, allowed ...domain.Role) (*domain.Membership, error)
}

// Invites creates and redeems invite tokens.
type Invites interface {
	Create(ctx context.Context, orgID string, role domain.Role, createdBy string, ttl time.Duration) (string, time.Duration, error)
	Redeem(ctx context.Context, token, redeemerID string) (string, error)
}

// Service manages org memberships and invites.
// Every operation is authorized through Guard first.
type Service struct {
	repo    Repository
	users   UserGetter
	guard   Guard
	invites Invites
	audit   audit.AuditLogger
	now     func() time.Time
}

// New returns a Service. auditLogger may be nil.
func New(repo Repository, users UserGetter, guard Guard, invites Invites, auditLogger audit.AuditLogger) *Service {
	return &Service{repo: repo, users: users, guard: guard, invites: invites, audit: auditLogger, now: time.Now}
}

// List returns the members of orgID. Any member may list.
func (s *Service) List(ctx context.Context, orgID, requesterID string) ([]*domain.Membership, error) {
	if _, err := s.guard.RequireRole(ctx, orgID, requesterID, rbac.ReadRoles...); err != nil {
		return nil, err
	}
	return s.repo.ListMembershipsByOrg(ctx, orgID)
}

// Add makes userID a member of orgID with role. Owners and admins only.
func (s *Service) Add(ctx context.Context, orgID, requesterID, userID, role string) (*domain.Membership, error) {
	if _, err := s.guard.RequireRole(ctx, orgID, requesterID, rbac.ManageRoles...); err != nil {
		return nil, err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, userdomain.ErrUserNotFound
	}
	existing, err := s.repo.GetMembershipByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyMember
	}
	m := &domain.Membership{
		ID:        uuid.New().String(),
		UserID:    userID,
		OrgID:     orgID,
		Role:      r,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateMembership(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ChangeRole sets userID's role in orgID. Owners only.
func (s *Service) ChangeRole(ctx context.Context, orgID, requesterID, userID, role string) error {
	if _, err := s.guard.RequireRole(ctx, orgID, requesterID, rbac.OwnerRoles...); err != nil {
		return err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return err
	}
	ok, err := s.repo.UpdateRole(ctx, orgID, userID, r)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrMembershipNotFound
	}
	return nil
}

// Remove deletes userID's membership in orgID. Owners and admins only.
func (s *Service) Remove(ctx context.Context, orgID, requesterID, userID string) error {
	if _, err := s.guard.RequireRole(ctx, orgID, requesterID, rbac.ManageRoles...); err != nil {
		return err
	}
	ok, err := s.repo.DeleteByUserAndOrg(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrMembershipNotFound
	}
	return nil
}

// CreateInvite issues an invite granting role in orgID and returns the raw
// token with its effective lifetime. Owners and admins only.
func (s *Service) CreateInvite(ctx context.Context, orgID, requesterID, role string, ttl time.Duration) (string, time.Duration, error) {
	if _, err := s.guard.RequireRole(ctx, orgID, requesterID, rbac.ManageRoles...); err != nil {
		return "", 0, err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return "", 0, err
	}
	return s.invites.Create(ctx, orgID, r, requesterID, ttl)
}

// Join redeems token for userID and returns the org joined.
func (s *Service) Join(ctx context.Context, token, userID string) (string, error) {
	orgID, err := s.invites.Redeem(ctx, token, userID)
	if err != nil {
		return "", err
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, orgID, userID, audit.ActionInviteRedeemed, audit.ResourceInvite, "")
	}
	return orgID, nil
}
