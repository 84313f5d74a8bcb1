package domain

import (
	"strings"
	"time"

	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
)

// Membership links a user to an organization with a role. Unique per
// (OrgID, UserID).
type Membership struct {
	ID        string
	UserID    string
	OrgID     string
	Role      Role
	CreatedAt time.Time
}

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

var (
	ErrInvalidRole        = apperr.New(apperr.KindInvalid, "invalid role")
	ErrAlreadyMember      = apperr.New(apperr.KindConflict, "user is already a member of this organization")
	ErrMembershipNotFound = apperr.New(apperr.KindNotFound, "membership not found")
)

// ParseRole accepts OWNER, ADMIN or MEMBER in any case.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleOwner, RoleAdmin, RoleMember:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}
