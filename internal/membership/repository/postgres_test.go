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

	"github.com/ShodmonX/taskflow-backend/internal/membership/domain"
)

var memberCols = []string{"id", "user_id", "org_id", "role", "created_at"}

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewPostgresRepository(conn), mock
}

func TestGetMembershipByUserAndOrg(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM memberships WHERE user_id = \$1 AND org_id = \$2`).
		WithArgs("u1", "o1").
		WillReturnRows(sqlmock.NewRows(memberCols).AddRow("m1", "u1", "o1", "ADMIN", now))

	m, err := repo.GetMembershipByUserAndOrg(context.Background(), "u1", "o1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, domain.RoleAdmin, m.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMembershipByUserAndOrg_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT .* FROM memberships`).WillReturnError(sql.ErrNoRows)

	m, err := repo.GetMembershipByUserAndOrg(context.Background(), "u1", "o1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestListMembershipsByOrg(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM memberships WHERE org_id = \$1 ORDER BY created_at`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows(memberCols).
			AddRow("m1", "u1", "o1", "OWNER", now).
			AddRow("m2", "u2", "o1", "MEMBER", now.Add(time.Minute)))

	list, err := repo.ListMembershipsByOrg(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.RoleOwner, list[0].Role)
	assert.Equal(t, "u2", list[1].UserID)
}

func TestCreateMembership_Duplicate(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO memberships`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_memberships_org_user"})

	err := repo.CreateMembership(context.Background(), &domain.Membership{ID: "m1", UserID: "u1", OrgID: "o1", Role: domain.RoleMember})
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)
}

func TestUpdateRole(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`UPDATE memberships SET role = \$1 WHERE org_id = \$2 AND user_id = \$3`).
		WithArgs("ADMIN", "o1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE memberships`).
		WithArgs("ADMIN", "o1", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateRole(context.Background(), "o1", "u1", domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateRole(context.Background(), "o1", "missing", domain.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteByUserAndOrg(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM memberships WHERE org_id = \$1 AND user_id = \$2`).
		WithArgs("o1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.DeleteByUserAndOrg(context.Background(), "o1", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
