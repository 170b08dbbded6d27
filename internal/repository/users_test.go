package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qltt-vn/market-portal/backend/internal/config"
	"github.com/qltt-vn/market-portal/backend/internal/domain"
	"github.com/qltt-vn/market-portal/backend/internal/scope"
)

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	return NewRepository(cfg, db), mock
}

var userColumns = []string{"id", "username", "full_name", "email", "phone", "status", "department_id", "created_at", "version"}

func TestGetUserByID(t *testing.T) {
	repo, mock := newTestRepository(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT username, password_hash, .+ FROM users WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "full_name", "email", "phone", "status", "department_id", "created_at", "version"}).
			AddRow("nguyenvanan", "hash", "Nguyễn Văn An", "an@qltt.vn", "0912345678", int16(1), int64(3), now, int32(1)))

	user, err := repo.GetUserByID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "nguyenvanan", user.Username)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	require.NotNil(t, user.DepartmentID)
	assert.Equal(t, int64(3), *user.DepartmentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDNotFound(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`SELECT username, password_hash, .+ FROM users WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByID(context.Background(), 404)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserOptimisticLock(t *testing.T) {
	repo, mock := newTestRepository(t)

	// Version không khớp: UPDATE không trả về dòng nào
	mock.ExpectQuery(`UPDATE users`).
		WillReturnError(sql.ErrNoRows)

	user := &domain.User{ID: 7, Version: 2, Status: domain.UserStatusActive}
	err := repo.UpdateUser(context.Background(), user)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectUsersBuildsConditions(t *testing.T) {
	repo, mock := newTestRepository(t)

	status := int16(1)
	now := time.Now()
	sel := scope.UserSelection{
		Query:         "an",
		Status:        &status,
		DepartmentIDs: []int64{2, 3},
		SortColumn:    "created_at",
		SortDesc:      true,
		Offset:        0,
		Limit:         20,
	}

	mock.ExpectQuery(`SELECT id, username, .+ FROM users\s+WHERE status = \$1 AND \(username ILIKE \$2 OR full_name ILIKE \$2 OR email ILIKE \$2\) AND department_id IN \(\$3, \$4\) ORDER BY created_at DESC OFFSET \$5 LIMIT \$6`).
		WithArgs(status, "%an%", int64(2), int64(3), 0, 20).
		WillReturnRows(sqlmock.NewRows(append(userColumns, "total")).
			AddRow(int64(7), "nguyenvanan", "Nguyễn Văn An", "an@qltt.vn", "0912345678", int16(1), int64(3), now, int32(1), int64(25)))

	users, total, err := repo.SelectUsers(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, int64(25), total)
	require.Len(t, users, 1)
	assert.Equal(t, "nguyenvanan", users[0].Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectUsersViewerOnly(t *testing.T) {
	repo, mock := newTestRepository(t)

	viewerID := int64(42)
	sel := scope.UserSelection{
		ViewerID:   &viewerID,
		SortColumn: "created_at",
		SortDesc:   true,
		Limit:      20,
	}

	mock.ExpectQuery(`SELECT id, username, .+ FROM users\s+WHERE id = \$1 ORDER BY created_at DESC OFFSET \$2 LIMIT \$3`).
		WithArgs(viewerID, 0, 20).
		WillReturnRows(sqlmock.NewRows(append(userColumns, "total")))

	users, total, err := repo.SelectUsers(context.Background(), sel)
	require.NoError(t, err)

	assert.Empty(t, users)
	assert.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckEmailIfExists(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("an@qltt.vn").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.CheckEmailIfExists(context.Background(), "an@qltt.vn")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPermissionCodesByUserID(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`SELECT DISTINCT rp.code`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("sa.store.read").AddRow("ADMIN:ACCESS"))

	codes, err := repo.ListPermissionCodesByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"sa.store.read", "ADMIN:ACCESS"}, codes)
	require.NoError(t, mock.ExpectationsWereMet())
}
