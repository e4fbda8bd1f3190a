package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/pkgwatch/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: store.ErrNotFound},
		{name: "unique violation", err: pgError(uniqueViolationCode), want: store.ErrDuplicate},
		{name: "foreign key violation", err: pgError(foreignKeyViolationCode), want: store.ErrInvalidEntity},
		{name: "check violation", err: pgError(checkViolationCode), want: store.ErrInvalidEntity},
		{name: "not null violation", err: pgError(notNullViolationCode), want: store.ErrInvalidEntity},
		{name: "wrapped pg error", err: fmt.Errorf("exec: %w", pgError(uniqueViolationCode)), want: store.ErrDuplicate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tc.err), tc.want)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("unmapped errors pass through", func(t *testing.T) {
		orig := errors.New("connection reset")
		assert.Same(t, orig, MapError(orig))

		other := &pgconn.PgError{Code: "40001"}
		assert.Equal(t, error(other), MapError(other))
	})
}

func TestViolationPredicates(t *testing.T) {
	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode)))
	assert.False(t, IsUniqueViolation(pgError(foreignKeyViolationCode)))
	assert.True(t, IsForeignKeyViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, IsForeignKeyViolation(errors.New("plain")))

	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrPackageNotFound))
	assert.False(t, IsNotFoundError(store.ErrDuplicate))
}

func TestMapErrorNamesConstraint(t *testing.T) {
	err := MapError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.Contains(t, err.Error(), "unique violation (users_email_key)")

	err = MapError(&pgconn.PgError{Code: notNullViolationCode, ColumnName: "name"})
	assert.Contains(t, err.Error(), "not null violation (name)")
}
