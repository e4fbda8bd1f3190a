package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// SQLSTATE codes for the integrity violations the stores translate.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// violations maps integrity violation codes to the store error they become
// and a label used in the wrapped message.
var violations = map[string]struct {
	target error
	label  string
}{
	uniqueViolationCode:     {store.ErrDuplicate, "unique violation"},
	foreignKeyViolationCode: {store.ErrInvalidEntity, "foreign key violation"},
	checkViolationCode:      {store.ErrInvalidEntity, "check constraint violation"},
	notNullViolationCode:    {store.ErrInvalidEntity, "not null violation"},
}

// MapError translates driver errors into store sentinels, keeping the
// original error in the message. Errors without a mapping are returned as is.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	pgErr := asPgError(err)
	if pgErr == nil {
		return err
	}
	v, ok := violations[pgErr.Code]
	if !ok {
		return err
	}

	subject := pgErr.ConstraintName
	if subject == "" {
		subject = pgErr.ColumnName
	}
	if subject == "" {
		return fmt.Errorf("%w: %s: %v", v.target, v.label, err)
	}
	return fmt.Errorf("%w: %s (%s): %v", v.target, v.label, subject, err)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	pgErr := asPgError(err)
	return pgErr != nil && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	pgErr := asPgError(err)
	return pgErr != nil && pgErr.Code == foreignKeyViolationCode
}

// IsNotFoundError reports whether err means a row was missing.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound)
}

func asPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}
