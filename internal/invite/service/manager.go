// Package service implements single-use organization invites.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/invite/domain"
	membership "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/kv"
	"github.com/ShodmonX/taskflow-backend/internal/security"
)

// MembershipStore is the durable membership collaborator. CreateMembership
// must return membership.ErrAlreadyMember when (org, user) already exists.
type MembershipStore interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*membership.Membership, error)
	CreateMembership(ctx context.Context, m *membership.Membership) error
}

// Manager creates and redeems invites.
type Manager struct {
	invites     *kv.Namespace[domain.Invite]
	memberships MembershipStore
	policy      domain.TTLPolicy
	logger      *zap.Logger
	now         func() time.Time
}

// NewManager stores invites in store under the invite key prefix and adds
// redeemers through memberships. A nil logger discards output.
func NewManager(store kv.Store, memberships MembershipStore, policy domain.TTLPolicy, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		invites:     kv.NewNamespace[domain.Invite](store, domain.KeyPrefix),
		memberships: memberships,
		policy:      policy,
		logger:      logger,
		now:         time.Now,
	}
}

// Create stores an invite granting role in orgID and returns the raw token
// with its effective lifetime. Authorization is the caller's job.
func (m *Manager) Create(ctx context.Context, orgID string, role membership.Role, createdBy string, ttl time.Duration) (string, time.Duration, error) {
	if !role.Valid() {
		return "", 0, membership.ErrInvalidRole
	}
	token, err := security.GenerateSecret()
	if err != nil {
		return "", 0, fmt.Errorf("invite: generate token: %w", err)
	}
	effective := m.policy.Effective(ttl)
	inv := &domain.Invite{OrgID: orgID, Role: role, CreatedBy: createdBy}
	if err := m.invites.Put(ctx, security.HashSecret(token), inv, effective); err != nil {
		return "", 0, fmt.Errorf("invite: store: %w", err)
	}
	return token, effective, nil
}

// Redeem grants the invite's role to redeemerID and returns the org id.
//
// A redeemer who is already a member gets membership.ErrAlreadyMember and the
// invite stays redeemable for someone else. Otherwise the invite is claimed
// with an atomic get-and-delete before the membership row is written, so a
// concurrent second redemption of the same token sees domain.ErrInvalidInvite.
// If the insert then loses a race to another path that made the same user a
// member, ErrAlreadyMember is returned and the invite stays consumed.
func (m *Manager) Redeem(ctx context.Context, token, redeemerID string) (string, error) {
	if !security.WellFormedSecret(token) {
		return "", domain.ErrInvalidInvite
	}
	id := security.HashSecret(token)

	inv, err := m.invites.Get(ctx, id)
	if err != nil {
		return "", m.lookupErr(err)
	}
	existing, err := m.memberships.GetMembershipByUserAndOrg(ctx, redeemerID, inv.OrgID)
	if err != nil {
		return "", fmt.Errorf("invite: check membership: %w", err)
	}
	if existing != nil {
		return "", membership.ErrAlreadyMember
	}

	claimed, err := m.invites.Take(ctx, id)
	if err != nil {
		return "", m.lookupErr(err)
	}
	if !claimed.Role.Valid() {
		m.logger.Warn("discarded invite with unknown role", zap.String("org_id", claimed.OrgID))
		return "", domain.ErrInvalidInvite
	}
	err = m.memberships.CreateMembership(ctx, &membership.Membership{
		ID:        uuid.NewString(),
		UserID:    redeemerID,
		OrgID:     claimed.OrgID,
		Role:      claimed.Role,
		CreatedAt: m.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, membership.ErrAlreadyMember) {
			return "", membership.ErrAlreadyMember
		}
		return "", fmt.Errorf("invite: grant membership: %w", err)
	}
	return claimed.OrgID, nil
}

func (m *Manager) lookupErr(err error) error {
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return domain.ErrInvalidInvite
	case errors.Is(err, kv.ErrCorrupt):
		m.logger.Warn("corrupt invite record", zap.Error(err))
		return domain.ErrInvalidInvite
	}
	return fmt.Errorf("invite: lookup: %w", err)
}
