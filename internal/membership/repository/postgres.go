package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ShodmonX/taskflow-backend/internal/db"
	"github.com/ShodmonX/taskflow-backend/internal/membership/domain"
)

const membershipColumns = `id, user_id, org_id, role, created_at`

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns a membership repository over conn, which may
// be a pool or a transaction.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// GetMembershipByUserAndOrg returns the membership for the given user and org, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	var m domain.Membership
	err := r.conn.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 AND org_id = $2`, userID, orgID,
	).Scan(&m.ID, &m.UserID, &m.OrgID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListMembershipsByOrg returns all memberships for the given org, oldest first.
func (r *PostgresRepository) ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE org_id = $1 ORDER BY created_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Membership{}
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrgID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// CreateMembership persists the membership. The membership must have ID set.
// A duplicate (org, user) pair maps to domain.ErrAlreadyMember.
func (r *PostgresRepository) CreateMembership(ctx context.Context, m *domain.Membership) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO memberships (`+membershipColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.OrgID, string(m.Role), m.CreatedAt,
	)
	if db.IsUniqueViolation(err, "uq_memberships_org_user") {
		return domain.ErrAlreadyMember
	}
	return err
}

// UpdateRole sets the member's role and reports whether the membership existed.
func (r *PostgresRepository) UpdateRole(ctx context.Context, orgID, userID string, role domain.Role) (bool, error) {
	res, err := r.conn.ExecContext(ctx,
		`UPDATE memberships SET role = $1 WHERE org_id = $2 AND user_id = $3`, string(role), orgID, userID)
	return affected(res, err)
}

// DeleteByUserAndOrg removes the membership and reports whether it existed.
func (r *PostgresRepository) DeleteByUserAndOrg(ctx context.Context, orgID, userID string) (bool, error) {
	res, err := r.conn.ExecContext(ctx,
		`DELETE FROM memberships WHERE org_id = $1 AND user_id = $2`, orgID, userID)
	return affected(res, err)
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
