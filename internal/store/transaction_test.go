package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return nil
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on function error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		expectedErr := errors.New("function failed")
		err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return expectedErr
		})
		assert.Equal(t, expectedErr, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		expectedErr := errors.New("begin transaction failed")
		mock.ExpectBegin().WillReturnError(expectedErr)

		err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return nil
		})
		assert.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		expectedErr := errors.New("commit failed")
		mock.ExpectCommit().WillReturnError(expectedErr)

		err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return nil
		})
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback error keeps original error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		functionErr := errors.New("function failed")
		mock.ExpectRollback().WillReturnError(errors.New("rollback failed"))

		err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return functionErr
		})
		assert.ErrorIs(t, err, functionErr)
		assert.Contains(t, err.Error(), "rollback failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				panic("test panic")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
