package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
)

// PackageStore defines the interface for package data persistence.
type PackageStore interface {
	// Create saves a new package together with its author and contributor links.
	// Returns ErrInvalidEntity if the author or a contributor does not exist.
	Create(ctx context.Context, pkg *domain.Package) error

	// GetByID retrieves a package without its relations.
	// Returns ErrPackageNotFound if the package does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Package, error)

	// GetWithRelations retrieves a package with its author, its contributors
	// (in credit order) and its tags materialized.
	// Returns ErrPackageNotFound if the package does not exist.
	GetWithRelations(ctx context.Context, id uuid.UUID) (*domain.Package, error)

	// ListIDs returns the IDs of all packages, oldest first.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// AttachTag links a tag to a package. Attaching an already attached tag
	// is a no-op. Existing tags are never detached.
	AttachTag(ctx context.Context, packageID, tagID uuid.UUID) error

	// WithTx returns a new PackageStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) PackageStore
}

// TagStore defines the interface for tag persistence.
type TagStore interface {
	// FindOrCreate returns the ID of the tag with tag.Name, creating the tag
	// from the given name and slug if it does not exist yet. Concurrent
	// callers always observe the same tag ID.
	FindOrCreate(ctx context.Context, tag *domain.Tag) (uuid.UUID, error)

	// GetByName retrieves a tag by its unique name.
	// Returns ErrTagNotFound if the tag does not exist.
	GetByName(ctx context.Context, name string) (*domain.Tag, error)

	// WithTx returns a new TagStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TagStore
}

// NotificationStore defines the interface for in-app notification persistence.
type NotificationStore interface {
	// Create saves a new notification.
	// Returns ErrInvalidEntity if the user or package does not exist.
	Create(ctx context.Context, n *domain.Notification) error

	// ListForUser returns the notifications of a user, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
}

// UserStore defines the interface for user persistence.
type UserStore interface {
	// Create saves a new user.
	// Returns ErrDuplicate if the email is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user with its password hash by email.
	// Returns ErrUserNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
