package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prospect-portal-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "created_at", "updated_at"}).
		AddRow("1", "user@example.com", "hash", "User", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, created_at, updated_at FROM users WHERE lower(email) = lower($1) LIMIT 1")).
		WithArgs("user@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &models.User{Email: "a@example.com", PasswordHash: "h", FullName: "A"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestListRoles(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "role", "permissions"}).
		AddRow("r1", "u1", "manager", "{prospect:review,prospect:notes}")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, role, permissions FROM user_roles WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(rows)

	roles, err := repo.ListRoles(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "manager", roles[0].Role)
	assert.Equal(t, pq.StringArray{"prospect:review", "prospect:notes"}, roles[0].Permissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignRoleUpserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "role", "permissions"}).
		AddRow("r1", "u1", "executive", "{}")
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_roles")).
		WithArgs(sqlmock.AnyArg(), "u1", "executive", sqlmock.AnyArg()).
		WillReturnRows(rows)

	assignment, err := repo.AssignRole(context.Background(), "u1", "executive", nil)
	require.NoError(t, err)
	assert.Equal(t, "executive", assignment.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionLifecycle(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO user_sessions").WillReturnResult(sqlmock.NewResult(1, 1))
	session := &models.UserSession{UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.CreateSession(context.Background(), session))
	require.NotEmpty(t, session.ID)

	rows := sqlmock.NewRows([]string{"id", "user_id", "expires_at", "revoked_at", "ip_address", "user_agent", "created_at"}).
		AddRow(session.ID, "u1", session.ExpiresAt, nil, "127.0.0.1", "test", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_sessions WHERE id = $1")).
		WithArgs(session.ID).
		WillReturnRows(rows)
	found, err := repo.FindSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, found.Active(time.Now()))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL")).
		WithArgs(session.ID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RevokeSession(context.Background(), session.ID, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))
	userID := "u1"
	log := &models.AuditLog{UserID: &userID, Action: models.AuditActionProspectReview, Resource: "company_prospect"}
	require.NoError(t, repo.CreateAuditLog(context.Background(), log))
	assert.NotEmpty(t, log.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
