package repository

import (
	"context"
	"database/sql"

	"github.com/ShodmonX/taskflow-backend/internal/audit/domain"
	"github.com/ShodmonX/taskflow-backend/internal/db"
)

type PostgresRepository struct {
	conn db.DBTX
}

// NewPostgresRepository returns an audit log repository that uses conn for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// ListByOrg returns audit logs for the given org, newest first, paginated by limit and offset.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]*domain.AuditLog, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, org_id, user_id, action, resource, ip, metadata, created_at
		 FROM audit_logs WHERE org_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		orgID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.AuditLog, 0)
	for rows.Next() {
		var (
			a    domain.AuditLog
			meta sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.OrgID, &a.UserID, &a.Action, &a.Resource, &a.IP, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Metadata = meta.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Create persists the audit log. The audit log must have ID set. Re-delivered
// entries with a known ID are ignored.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO audit_logs (id, org_id, user_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.OrgID, a.UserID, a.Action, a.Resource, a.IP, meta, a.CreatedAt,
	)
	return err
}
