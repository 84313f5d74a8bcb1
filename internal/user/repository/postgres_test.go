package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShodmonX/taskflow-backend/internal/user/domain"
)

var userCols = []string{"id", "email", "username", "is_active", "is_verified", "is_superuser", "created_at", "updated_at"}

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewPostgresRepository(conn), mock
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@example.com", "alice", true, false, false, now, now))

	u, err := repo.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCreate_MapsUniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"uq_users_email", domain.ErrEmailTaken},
		{"uq_users_username", domain.ErrUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectExec(`INSERT INTO users`).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@example.com", Username: "alice"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreate_OK(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	u := &domain.User{ID: "u1", Email: "a@example.com", Username: "alice", IsActive: true, CreatedAt: now, UpdatedAt: now}
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.Username, true, false, false, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}
