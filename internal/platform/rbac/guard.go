// Package rbac is the single enforcement point for organization roles. Every
// org, project and task operation calls Guard.RequireRole before touching
// durable storage.
package rbac

import (
	"context"
	"fmt"
	"slices"

	"github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
)

// Forbidden outcomes of RequireRole.
var (
	// ErrNotAMember means the caller has no membership in the org.
	ErrNotAMember = apperr.New(apperr.KindForbidden, "not a member of this organization")
	// ErrInsufficientRole means the caller's role is outside the allowed set.
	ErrInsufficientRole = apperr.New(apperr.KindForbidden, "insufficient role for this operation")
)

// Allowed-role sets used by callers. Roles are compared by set membership,
// never by rank.
var (
	ReadRoles   = []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleMember}
	ManageRoles = []domain.Role{domain.RoleOwner, domain.RoleAdmin}
	OwnerRoles  = []domain.Role{domain.RoleOwner}
)

// OrgMembershipGetter returns a user's membership in an org, or nil, nil when
// there is none.
type OrgMembershipGetter interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
}

// Guard resolves the caller's membership and checks it against an allowed set.
type Guard struct {
	memberships OrgMembershipGetter
}

// NewGuard returns a Guard that looks memberships up through memberships.
func NewGuard(memberships OrgMembershipGetter) *Guard {
	return &Guard{memberships: memberships}
}

// RequireRole returns the caller's membership in orgID when its role is in
// allowed. It fails with ErrNotAMember when there is no membership and
// ErrInsufficientRole when the role is not allowed. An empty allowed set
// admits nobody.
func (g *Guard) RequireRole(ctx context.Context, orgID, userID string, allowed ...domain.Role) (*domain.Membership, error) {
	m, err := g.memberships.GetMembershipByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("rbac: resolve membership: %w", err)
	}
	if m == nil {
		return nil, ErrNotAMember
	}
	if !slices.Contains(allowed, m.Role) {
		return nil, ErrInsufficientRole
	}
	return m, nil
}
