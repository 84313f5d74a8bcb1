package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ShodmonX/taskflow-backend/internal/db"
	"github.com/ShodmonX/taskflow-backend/internal/project/domain"
)

const projectColumns = `id, org_id, name, description, created_by, created_at`

type PostgresRepository struct {
	conn db.DBTX
}

func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

// Create persists the project. The project must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.OrgID, p.Name, nullString(p.Description), nullString(p.CreatedBy), p.CreatedAt,
	)
	return err
}

// GetByID returns the project for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	p, err := scanProject(r.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ListByOrg returns the org's projects, newest first.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Project, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the project and its tasks, reporting whether it existed.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var (
		p               domain.Project
		desc, createdBy    sql.NullString
	)
	if err := s.Scan(&p.ID, &p.OrgID, &p.Name, &desc, &createdBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Description = desc.String
	p.CreatedBy = createdBy.String
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
