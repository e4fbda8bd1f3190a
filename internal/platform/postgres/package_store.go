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

// PostgresPackageStore implements the store.PackageStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPackageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPackageStore creates a new PostgreSQL implementation of the PackageStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresPackageStore(db store.DBTX, logger *slog.Logger) *PostgresPackageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPackageStore{
		db:     db,
		logger: logger.With(slog.String("component", "package_store")),
	}
}

var _ store.PackageStore = (*PostgresPackageStore)(nil)

// Create implements store.PackageStore.Create.
// The author and contributors are upserted by ID and linked to the package
// in the order given. Run it inside a transaction to keep the writes atomic.
func (s *PostgresPackageStore) Create(ctx context.Context, pkg *domain.Package) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("package_id", pkg.ID.String()))

	if err := pkg.Validate(); err != nil {
		log.Warn("package validation failed during create", slog.String("error", redact.Error(err)))
		return err
	}

	var authorID *uuid.UUID
	if pkg.Author != nil {
		linked, err := s.upsertPerson(ctx, "authors", pkg.Author.ID, pkg.Author.Name, pkg.Author.UserID)
		if err != nil {
			log.Warn("failed to store package author", slog.String("error", redact.Error(err)))
			return err
		}
		pkg.Author.UserID = linked
		authorID = &pkg.Author.ID
	} else if pkg.AuthorID != nil {
		authorID = pkg.AuthorID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO packages (id, name, url, repo_url, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pkg.ID, pkg.Name, pkg.URL, pkg.RepoURL, authorID, pkg.CreatedAt, pkg.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: author not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create package", slog.String("error", redact.Error(err)))
		return MapError(err)
	}

	for i, c := range pkg.Contributors {
		linked, err := s.upsertPerson(ctx, "contributors", c.ID, c.Name, c.UserID)
		if err != nil {
			log.Warn("failed to store contributor",
				slog.String("contributor_id", c.ID.String()),
				slog.String("error", redact.Error(err)))
			return err
		}
		pkg.Contributors[i].UserID = linked
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO package_contributors (package_id, contributor_id, position)
			VALUES ($1, $2, $3)
		`, pkg.ID, c.ID, i)
		if err != nil {
			if IsUniqueViolation(err) {
				return fmt.Errorf("%w: contributor %s listed twice", store.ErrDuplicate, c.ID)
			}
			log.Error("failed to link contributor", slog.String("error", redact.Error(err)))
			return MapError(err)
		}
	}

	pkg.AuthorID = authorID
	log.Info("package created",
		slog.String("name", pkg.Name),
		slog.Int("contributors", len(pkg.Contributors)))
	return nil
}

// upsertPerson writes an author or contributor row and returns the user the
// person is linked to afterwards. A nil userID keeps an existing link, so
// crediting a known person by ID alone never unlinks them. table is one of
// two fixed identifiers and never user input.
func (s *PostgresPackageStore) upsertPerson(
	ctx context.Context,
	table string,
	id uuid.UUID,
	name string,
	userID *uuid.UUID,
) (*uuid.UUID, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: %s id cannot be empty", store.ErrInvalidEntity, table)
	}
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (id, name, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, user_id = COALESCE(EXCLUDED.user_id, %[1]s.user_id)
		RETURNING user_id
	`, table)

	var linked uuid.NullUUID
	if err := s.db.QueryRowContext(ctx, query, id, name, userID).Scan(&linked); err != nil {
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: linked user not found", store.ErrInvalidEntity)
		}
		return nil, MapError(err)
	}
	if !linked.Valid {
		return nil, nil
	}
	return &linked.UUID, nil
}

// GetByID implements store.PackageStore.GetByID
func (s *PostgresPackageStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var pkg domain.Package
	var authorID uuid.NullUUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, url, repo_url, author_id, created_at, updated_at
		FROM packages
		WHERE id = $1
	`, id).Scan(&pkg.ID, &pkg.Name, &pkg.URL, &pkg.RepoURL, &authorID, &pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("package not found", slog.String("package_id", id.String()))
			return nil, store.ErrPackageNotFound
		}
		log.Error("failed to get package", slog.String("package_id", id.String()), slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	if authorID.Valid {
		pkg.AuthorID = &authorID.UUID
	}
	return &pkg, nil
}

// GetWithRelations implements store.PackageStore.GetWithRelations
func (s *PostgresPackageStore) GetWithRelations(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var pkg domain.Package
	var authorID, authorUserID uuid.NullUUID
	var authorName sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.url, p.repo_url, p.created_at, p.updated_at,
		       a.id, a.name, a.user_id
		FROM packages p
		LEFT JOIN authors a ON a.id = p.author_id
		WHERE p.id = $1
	`, id).Scan(
		&pkg.ID, &pkg.Name, &pkg.URL, &pkg.RepoURL, &pkg.CreatedAt, &pkg.UpdatedAt,
		&authorID, &authorName, &authorUserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("package not found", slog.String("package_id", id.String()))
			return nil, store.ErrPackageNotFound
		}
		log.Error("failed to get package", slog.String("package_id", id.String()), slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}

	if authorID.Valid {
		pkg.AuthorID = &authorID.UUID
		pkg.Author = &domain.Author{ID: authorID.UUID, Name: authorName.String}
		if authorUserID.Valid {
			pkg.Author.UserID = &authorUserID.UUID
		}
	}

	if pkg.Contributors, err = s.contributors(ctx, id); err != nil {
		log.Error("failed to load contributors", slog.String("package_id", id.String()), slog.String("error", redact.Error(err)))
		return nil, err
	}
	if pkg.Tags, err = s.tags(ctx, id); err != nil {
		log.Error("failed to load tags", slog.String("package_id", id.String()), slog.String("error", redact.Error(err)))
		return nil, err
	}

	return &pkg, nil
}

func (s *PostgresPackageStore) contributors(ctx context.Context, packageID uuid.UUID) ([]domain.Contributor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.user_id
		FROM package_contributors pc
		JOIN contributors c ON c.id = pc.contributor_id
		WHERE pc.package_id = $1
		ORDER BY pc.position ASC
	`, packageID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Contributor
	for rows.Next() {
		var c domain.Contributor
		var userID uuid.NullUUID
		if err := rows.Scan(&c.ID, &c.Name, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan contributor row: %w", err)
		}
		if userID.Valid {
			c.UserID = &userID.UUID
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

func (s *PostgresPackageStore) tags(ctx context.Context, packageID uuid.UUID) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.created_at
		FROM package_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.package_id = $1
		ORDER BY t.name ASC
	`, packageID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// ListIDs implements store.PackageStore.ListIDs
func (s *PostgresPackageStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM packages ORDER BY created_at ASC, id ASC`)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list packages", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan package id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

// AttachTag implements store.PackageStore.AttachTag.
// The composite primary key on package_tags makes repeated attaches no-ops.
func (s *PostgresPackageStore) AttachTag(ctx context.Context, packageID, tagID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("package_id", packageID.String()),
		slog.String("tag_id", tagID.String()),
	)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO package_tags (package_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (package_id, tag_id) DO NOTHING
	`, packageID, tagID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("attach tag references missing package or tag", slog.String("error", redact.Error(err)))
			return fmt.Errorf("%w: package or tag does not exist", store.ErrPackageNotFound)
		}
		log.Error("failed to attach tag", slog.String("error", redact.Error(err)))
		return MapError(err)
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		log.Info("tag attached to package")
	} else {
		log.Debug("tag already attached to package")
	}
	return nil
}

// WithTx implements store.PackageStore.WithTx
func (s *PostgresPackageStore) WithTx(tx *sql.Tx) store.PackageStore {
	return &PostgresPackageStore{
		db:     tx,
		logger: s.logger,
	}
}
