package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUserStore_Create(t *testing.T) {
	t.Run("inserts user", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, discardLogger())
		user, err := domain.NewUser("Ada@Example.com", "Ada")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, "ada@example.com", "Ada", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Create(context.Background(), user))
	})

	t.Run("stores password hash", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, discardLogger())
		user, err := domain.NewUser("ada@example.com", "Ada")
		require.NoError(t, err)
		user.HashedPassword = "$2a$04$hash"

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id, email, name, hashed_password")).
			WithArgs(user.ID, "ada@example.com", "Ada", "$2a$04$hash", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Create(context.Background(), user))
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, discardLogger())
		user, err := domain.NewUser("ada@example.com", "Ada")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(pgError(uniqueViolationCode))

		err = s.Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.Contains(t, err.Error(), "email already registered")
	})

	t.Run("invalid user is not written", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := NewPostgresUserStore(db, discardLogger())

		err := s.Create(context.Background(), &domain.User{ID: uuid.New(), Name: "Ada"})
		assert.ErrorIs(t, err, domain.ErrEmptyEmail)
	})
}

func TestPostgresUserStore_GetByID(t *testing.T) {
	columns := []string{"id", "email", "name", "created_at", "updated_at"}

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, discardLogger())
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(id.String(), "ada@example.com", "Ada", now, now))

		user, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "Ada", user.Name)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, discardLogger())
		boom := errors.New("connection reset")

		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).WillReturnError(boom)

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, boom)
	})
}

func TestPostgresUserStore_GetByEmail(t *testing.T) {
	columns := []string{"id", "email", "name", "hashed_password", "created_at", "updated_at"}

	t.Run("found with hash", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, discardLogger())
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
			WithArgs("Ada@Example.com").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id.String(), "ada@example.com", "Ada", "$2a$04$hash", now, now))

		user, err := s.GetByEmail(context.Background(), " Ada@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "$2a$04$hash", user.HashedPassword)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := s.GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
