package domain

import (
	"time"

	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
)

// Credential is a user's local password credential. One per user.
type Credential struct {
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	ErrUserInactive       = apperr.New(apperr.KindForbidden, "user is inactive")
	ErrMissingRefresh     = apperr.New(apperr.KindUnauthenticated, "missing refresh token")
	// ErrUserGone is returned when a valid access token names a deleted user.
	ErrUserGone = apperr.New(apperr.KindUnauthenticated, "user not found")
)
