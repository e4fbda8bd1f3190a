package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/platform/logger"
	"github.com/phrazzld/pkgwatch/internal/redact"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// PostgresTagStore implements the store.TagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the TagStore interface.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

var _ store.TagStore = (*PostgresTagStore)(nil)

// FindOrCreate implements store.TagStore.FindOrCreate.
// The no-op update on conflict makes RETURNING yield the existing row, so
// concurrent callers race on the unique name index and all get the same ID.
func (s *PostgresTagStore) FindOrCreate(ctx context.Context, tag *domain.Tag) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("tag_name", tag.Name))

	if err := tag.Validate(); err != nil {
		log.Warn("tag validation failed", slog.String("error", redact.Error(err)))
		return uuid.Nil, err
	}

	id := tag.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var storedID uuid.UUID
	var inserted bool
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (id, name, slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, (xmax = 0) AS inserted
	`, id, tag.Name, tag.Slug).Scan(&storedID, &inserted)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("tag slug already used by another tag", slog.String("slug", tag.Slug))
			return uuid.Nil, fmt.Errorf("%w: tag slug %q", store.ErrDuplicate, tag.Slug)
		}
		log.Error("failed to find or create tag", slog.String("error", redact.Error(err)))
		return uuid.Nil, MapError(err)
	}

	if inserted {
		log.Info("tag created", slog.String("tag_id", storedID.String()))
	}
	return storedID, nil
}

// GetByName implements store.TagStore.GetByName
func (s *PostgresTagStore) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, created_at
		FROM tags
		WHERE name = $1
	`, name).Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get tag",
			slog.String("tag_name", name),
			slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	return &tag, nil
}

// WithTx implements store.TagStore.WithTx
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{
		db:     tx,
		logger: s.logger,
	}
}
