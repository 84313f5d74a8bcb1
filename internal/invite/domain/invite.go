package domain

import (
	"time"

	membership "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
)

// KeyPrefix namespaces pending invites in the ephemeral store. The full key
// is KeyPrefix + sha256-hex(token).
const KeyPrefix = "invite:"

// ErrInvalidInvite covers unknown, expired, already redeemed and malformed
// tokens alike.
var ErrInvalidInvite = apperr.New(apperr.KindNotFound, "invite token is invalid or expired")

// Invite is a pending, single-use grant of Role in OrgID.
type Invite struct {
	OrgID     string          `json:"org_id"`
	Role      membership.Role `json:"role"`
	CreatedBy string          `json:"created_by"`
}

// TTLPolicy bounds invite lifetimes.
type TTLPolicy struct {
	Default time.Duration
	Min     time.Duration
	Max     time.Duration
}

// Effective returns requested clamped to [Min, Max], or Default when
// requested is not positive.
func (p TTLPolicy) Effective(requested time.Duration) time.Duration {
	if requested <= 0 {
		return p.Default
	}
	if requested < p.Min {
		return p.Min
	}
	if requested > p.Max {
		return p.Max
	}
	return requested
}
