package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ShodmonX/taskflow-backend/internal/db"
	"github.com/ShodmonX/taskflow-backend/internal/user/domain"
)

const userColumns = `id, email, username, is_active, is_verified, is_superuser, created_at, updated_at`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns a user repository over conn, which may be a
// pool or a transaction.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user with the given email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByUsername returns the user with the given username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// Create persists the user. The user must have ID set. A duplicate email or
// username maps to domain.ErrEmailTaken or domain.ErrUsernameTaken.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Username, u.IsActive, u.IsVerified, u.IsSuperuser, u.CreatedAt, u.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err, "uq_users_email"):
		return domain.ErrEmailTaken
	case db.IsUniqueViolation(err, "uq_users_username"):
		return domain.ErrUsernameTaken
	}
	return err
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.IsActive, &u.IsVerified, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
