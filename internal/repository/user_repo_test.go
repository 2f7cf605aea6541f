package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/craft-market/internal/models"
)

func newRepoWithMock(t *testing.T) (UserRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewUserRepository(gdb), mock, db
}

// The self-delete cascade must reassign handicrafts to the sentinel owner
// rather than delete them, remove likes and history rows, and only then
// delete the user row, all inside one transaction.
func TestDeleteWithDependents_ReassignsHandicrafts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE "handicrafts" SET "user_id"=\$1,"updated_at"=\$2 WHERE user_id = \$3`).
		WithArgs(models.DeletedOwnerID, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`^DELETE FROM "likes" WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`^DELETE FROM "history_handicrafts" WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM "users" WHERE id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteWithDependents(context.Background(), "u1")

	require.NoError(t, err)
	// Expectations are ordered: no DELETE ever touched handicrafts, both
	// rows were reassigned by the single UPDATE
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithDependents_RollsBackOnFailure(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE "handicrafts" SET "user_id"=\$1,"updated_at"=\$2 WHERE user_id = \$3`).
		WithArgs(models.DeletedOwnerID, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`^DELETE FROM "likes" WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.DeleteWithDependents(context.Background(), "u1")

	// The user row delete never ran and the transaction rolled back
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
