package domain

import (
	"time"

	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
)

// KeyPrefix namespaces refresh session records in the ephemeral store. The
// full key is KeyPrefix + sha256-hex(raw secret).
const KeyPrefix = "refresh-session:"

// ErrInvalidSession covers every refresh failure the caller may see: never
// issued, already rotated, revoked, expired or malformed. The cases are
// deliberately indistinguishable.
var ErrInvalidSession = apperr.New(apperr.KindUnauthenticated, "invalid or expired refresh token")

// RefreshSession is one generation of a refresh session chain. It is stored
// under the hash of its raw secret and lives until rotated, revoked or expired.
type RefreshSession struct {
	ID          string    `json:"sid"`
	UserID      string    `json:"uid"`
	CreatedAt   time.Time `json:"created_at"`
	RotatedFrom string    `json:"rotated_from,omitempty"`
}
