package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ShodmonX/taskflow-backend/internal/db"
	"github.com/ShodmonX/taskflow-backend/internal/identity/domain"
	userdomain "github.com/ShodmonX/taskflow-backend/internal/user/domain"
	userrepo "github.com/ShodmonX/taskflow-backend/internal/user/repository"
)

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns a credential repository that uses conn for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// GetByUserID returns the credential for userID, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*domain.Credential, error) {
	var c domain.Credential
	err := r.conn.QueryRowContext(ctx,
		`SELECT user_id, password_hash, updated_at FROM credentials WHERE user_id = $1`, userID,
	).Scan(&c.UserID, &c.PasswordHash, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Create persists the credential.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Credential) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO credentials (user_id, password_hash, updated_at) VALUES ($1, $2, $3)`,
		c.UserID, c.PasswordHash, c.UpdatedAt,
	)
	return err
}

// UpdatePasswordHash replaces the stored hash, e.g. when a login upgrades a
// hash made with an older algorithm.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	_, err := r.conn.ExecContext(ctx,
		`UPDATE credentials SET password_hash = $2, updated_at = $3 WHERE user_id = $1`,
		userID, passwordHash, time.Now().UTC(),
	)
	return err
}

// Accounts creates users together with their credentials in one transaction.
type Accounts struct {
	pool *sql.DB
}

func NewAccounts(pool *sql.DB) *Accounts {
	return &Accounts{pool: pool}
}

// CreateAccount inserts u and c atomically. Duplicate email or username
// surface as userdomain.ErrEmailTaken / ErrUsernameTaken.
func (a *Accounts) CreateAccount(ctx context.Context, u *userdomain.User, c *domain.Credential) error {
	return db.WithTx(ctx, a.pool, func(tx *sql.Tx) error {
		if err := userrepo.NewPostgresRepository(tx).Create(ctx, u); err != nil {
			return err
		}
		return NewPostgresRepository(tx).Create(ctx, c)
	})
}
