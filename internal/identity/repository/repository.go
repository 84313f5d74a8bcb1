package repository

import (
	"context"

	"github.com/ShodmonX/taskflow-backend/internal/identity/domain"
	userdomain "github.com/ShodmonX/taskflow-backend/internal/user/domain"
)

// Repository defines persistence for credentials.
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Credential, error)
	Create(ctx context.Context, c *domain.Credential) error
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// AccountCreator atomically creates a user with its credential.
type AccountCreator interface {
	CreateAccount(ctx context.Context, u *userdomain.User, c *domain.Credential) error
}
