package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ShodmonX/taskflow-backend/internal/db"
	membershipdomain "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	membershiprepo "github.com/ShodmonX/taskflow-backend/internal/membership/repository"
	"github.com/ShodmonX/taskflow-backend/internal/organization/domain"
)

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns an organization repository over conn, which
// may be a pool or a transaction.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// GetOrganizationByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error) {
	var o domain.Org
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at FROM organizations WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.CreatedBy, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// CreateOrganization persists the organization. The organization must have ID set.
func (r *PostgresRepository) CreateOrganization(ctx context.Context, o *domain.Org) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO organizations (id, name, created_by, created_at) VALUES ($1, $2, $3, $4)`,
		o.ID, o.Name, o.CreatedBy, o.CreatedAt,
	)
	return err
}

// ListByUser returns the organizations userID belongs to, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Org, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT o.id, o.name, o.created_by, o.created_at
		   FROM organizations o
		   JOIN memberships m ON m.org_id = o.id
		  WHERE m.user_id = $1
		  ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Org{}
	for rows.Next() {
		var o domain.Org
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedBy, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

// Creator writes an organization and its owner membership in one transaction.
type Creator struct {
	pool *sql.DB
}

func NewCreator(pool *sql.DB) *Creator {
	return &Creator{pool: pool}
}

// CreateWithOwner inserts o and owner, or neither.
func (c *Creator) CreateWithOwner(ctx context.Context, o *domain.Org, owner *membershipdomain.Membership) error {
	return db.WithTx(ctx, c.pool, func(tx *sql.Tx) error {
		if err := NewPostgresRepository(tx).CreateOrganization(ctx, o); err != nil {
			return err
		}
		return membershiprepo.NewPostgresRepository(tx).CreateMembership(ctx, owner)
	})
}
