package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ShodmonX/taskflow-backend/internal/db"
	"github.com/ShodmonX/taskflow-backend/internal/task/domain"
)

const taskColumns = `id, org_id, project_id, title, description, status, created_by, created_at`

type PostgresRepository struct {
	conn db.DBTX
}

func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// Create persists the task. The task must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.OrgID, t.ProjectID, t.Title, nullString(t.Description), string(t.Status), nullString(t.CreatedBy), t.CreatedAt,
	)
	return err
}

// List returns one page of tasks matching f, newest first, and the total
// number of matches.
func (r *PostgresRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Task, int, error) {
	where, args := whereClause(f)

	var total int
	if err := r.conn.QueryRowContext(ctx, `SELECT count(*) FROM tasks WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		taskColumns, where, n+1, n+2)
	rows, err := r.conn.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*domain.Task{}
	for rows.Next() {
		var (
			t               domain.Task
			desc, createdBy sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.OrgID, &t.ProjectID, &t.Title, &desc, &t.Status, &createdBy, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		t.Description = desc.String
		t.CreatedBy = createdBy.String
		out = append(out, &t)
	}
	return out, total, rows.Err()
}

func whereClause(f domain.Filter) (string, []any) {
	conds := []string{"org_id = $1"}
	args := []any{f.OrgID}
	if f.ProjectID != "" {
		args = append(args, f.ProjectID)
		conds = append(conds, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
