package domain

import (
	"strings"
	"time"

	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
)

// User is the core user entity. Email and Username are each unique.
type User struct {
	ID          string
	Email       string
	Username    string
	IsActive    bool
	IsVerified  bool
	IsSuperuser bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	ErrEmailTaken    = apperr.Conflict("Email already registered")
	ErrUsernameTaken = apperr.Conflict("Username already taken")
	ErrUserNotFound  = apperr.NotFound("user not found")
)

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
