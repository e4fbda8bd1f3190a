package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/events"
	"github.com/phrazzld/pkgwatch/internal/store"
	"github.com/phrazzld/pkgwatch/internal/task"
)

// PersonInput describes an author or contributor credited on a new package.
// A zero ID creates a new person; a known ID updates the existing one.
type PersonInput struct {
	ID     uuid.UUID
	Name   string
	UserID *uuid.UUID
}

// CreatePackageInput holds the data needed to register a package.
type CreatePackageInput struct {
	Name         string
	URL          string
	RepoURL      string
	Author       *PersonInput
	Contributors []PersonInput
}

// CreateUserInput holds the data needed to register a user.
type CreateUserInput struct {
	Email string
	Name  string
}

// PackageService provides package catalog operations.
type PackageService interface {
	// CreatePackage stores a package with its author and contributors and
	// requests a URL check for it.
	CreatePackage(ctx context.Context, input CreatePackageInput) (*domain.Package, error)

	// GetPackage retrieves a package with its author, contributors and tags.
	GetPackage(ctx context.Context, id uuid.UUID) (*domain.Package, error)

	// RequestURLCheck queues a URL check for an existing package.
	RequestURLCheck(ctx context.Context, id uuid.UUID) error

	// RequestAllURLChecks queues a URL check for every package and returns
	// the number of checks requested.
	RequestAllURLChecks(ctx context.Context) (int, error)

	// CreateUser registers a user that authors and contributors can link to.
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)

	// ListNotifications returns the notifications of a user, newest first.
	ListNotifications(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
}

// packageServiceImpl implements the PackageService interface
type packageServiceImpl struct {
	db            *sql.DB
	packages      store.PackageStore
	users         store.UserStore
	notifications store.NotificationStore
	eventEmitter  events.EventEmitter
	logger        *slog.Logger
}

// NewPackageService creates a new PackageService.
// It returns an error if any of the required dependencies are nil.
func NewPackageService(
	db *sql.DB,
	packages store.PackageStore,
	users store.UserStore,
	notifications store.NotificationStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (PackageService, error) {
	deps := []struct {
		name  string
		isNil bool
	}{
		{"db", db == nil},
		{"packages", packages == nil},
		{"users", users == nil},
		{"notifications", notifications == nil},
		{"eventEmitter", eventEmitter == nil},
	}
	for _, d := range deps {
		if d.isNil {
			return nil, &PackageServiceError{
				Operation: "create_service",
				Message:   d.name + " cannot be nil",
			}
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &packageServiceImpl{
		db:            db,
		packages:      packages,
		users:         users,
		notifications: notifications,
		eventEmitter:  eventEmitter,
		logger:        logger.With("component", "package_service"),
	}, nil
}

// CreatePackage validates the input, stores the package and its credits in
// one transaction, then emits a URL check event. A failed emit does not undo
// the stored package; the check can be requested again later.
func (s *packageServiceImpl) CreatePackage(
	ctx context.Context,
	input CreatePackageInput,
) (*domain.Package, error) {
	pkg, err := buildPackage(input)
	if err != nil {
		s.logger.Debug("rejected package input", "error", err, "name", input.Name)
		return nil, NewPackageServiceError("create_package", "invalid package", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.packages.WithTx(tx).Create(ctx, pkg)
	})
	if err != nil {
		s.logger.Error("failed to create package",
			"error", err,
			"package_id", pkg.ID,
			"name", pkg.Name)
		return nil, NewPackageServiceError("create_package", "failed to save package", err)
	}

	if err := s.emitCheck(ctx, pkg.ID); err != nil {
		s.logger.Warn("package created but URL check was not requested",
			"error", err,
			"package_id", pkg.ID)
	}

	s.logger.Info("package created",
		"package_id", pkg.ID,
		"name", pkg.Name,
		"contributors", len(pkg.Contributors))
	return pkg, nil
}

// GetPackage retrieves a package with its relations.
func (s *packageServiceImpl) GetPackage(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	pkg, err := s.packages.GetWithRelations(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			s.logger.Error("failed to load package", "error", err, "package_id", id)
		}
		return nil, NewPackageServiceError("get_package", "failed to load package", err)
	}
	return pkg, nil
}

// RequestURLCheck verifies that the package exists and emits a check event.
func (s *packageServiceImpl) RequestURLCheck(ctx context.Context, id uuid.UUID) error {
	if _, err := s.packages.GetByID(ctx, id); err != nil {
		return NewPackageServiceError("request_url_check", "failed to load package", err)
	}

	if err := s.emitCheck(ctx, id); err != nil {
		s.logger.Error("failed to request URL check", "error", err, "package_id", id)
		return NewPackageServiceError("request_url_check", "failed to emit event", err)
	}
	return nil
}

// RequestAllURLChecks emits one check event per stored package. A failed emit
// is logged and the sweep continues; the joined errors are returned with the
// number of checks that were requested.
func (s *packageServiceImpl) RequestAllURLChecks(ctx context.Context) (int, error) {
	ids, err := s.packages.ListIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list packages", "error", err)
		return 0, NewPackageServiceError("request_all_url_checks", "failed to list packages", err)
	}

	requested := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.emitCheck(ctx, id); err != nil {
			s.logger.Warn("failed to request URL check", "error", err, "package_id", id)
			errs = append(errs, fmt.Errorf("package %s: %w", id, err))
			continue
		}
		requested++
	}

	s.logger.Info("URL checks requested",
		"requested", requested,
		"packages", len(ids))

	if len(errs) > 0 {
		return requested, NewPackageServiceError(
			"request_all_url_checks",
			fmt.Sprintf("%d of %d checks not requested", len(ids)-requested, len(ids)),
			errors.Join(errs...),
		)
	}
	return requested, nil
}

// CreateUser stores a new user.
func (s *packageServiceImpl) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	user, err := domain.NewUser(input.Email, input.Name)
	if err != nil {
		return nil, NewPackageServiceError("create_user", "invalid user",
			fmt.Errorf("%w: %w", domain.ErrValidation, err))
	}

	if err := s.users.Create(ctx, user); err != nil {
		if !store.IsDuplicateError(err) {
			s.logger.Error("failed to create user", "error", err, "user_id", user.ID)
		}
		return nil, NewPackageServiceError("create_user", "failed to save user", err)
	}

	s.logger.Info("user created", "user_id", user.ID)
	return user, nil
}

// ListNotifications verifies that the user exists and returns their notifications.
func (s *packageServiceImpl) ListNotifications(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Notification, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, NewPackageServiceError("list_notifications", "failed to load user", err)
	}

	list, err := s.notifications.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list notifications", "error", err, "user_id", userID)
		return nil, NewPackageServiceError("list_notifications", "failed to list notifications", err)
	}
	return list, nil
}

func (s *packageServiceImpl) emitCheck(ctx context.Context, packageID uuid.UUID) error {
	event, err := events.NewTaskRequestEvent(
		task.TaskTypeCheckPackageURLs,
		task.CheckPackageURLsPayload{PackageID: packageID},
	)
	if err != nil {
		return fmt.Errorf("failed to create check event: %w", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to emit check event %s: %w", event.ID, err)
	}

	s.logger.Debug("URL check requested",
		"package_id", packageID,
		"event_id", event.ID)
	return nil
}

// buildPackage turns the input into a validated package with its credits.
func buildPackage(input CreatePackageInput) (*domain.Package, error) {
	pkg, err := domain.NewPackage(input.Name, input.URL, input.RepoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if input.Author != nil {
		id, name, err := person(*input.Author, "author")
		if err != nil {
			return nil, err
		}
		pkg.Author = &domain.Author{ID: id, Name: name, UserID: input.Author.UserID}
		pkg.AuthorID = &pkg.Author.ID
	}

	seen := make(map[uuid.UUID]bool, len(input.Contributors))
	for i, c := range input.Contributors {
		id, name, err := person(c, fmt.Sprintf("contributor %d", i))
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: contributor %s listed twice", domain.ErrValidation, id)
		}
		seen[id] = true
		pkg.Contributors = append(pkg.Contributors, domain.Contributor{
			ID:     id,
			Name:   name,
			UserID: c.UserID,
		})
	}

	return pkg, nil
}

func person(in PersonInput, role string) (uuid.UUID, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return uuid.Nil, "", fmt.Errorf("%w: %s name cannot be empty", domain.ErrValidation, role)
	}
	if in.UserID != nil && *in.UserID == uuid.Nil {
		return uuid.Nil, "", fmt.Errorf("%w: %s user ID cannot be empty", domain.ErrValidation, role)
	}
	id := in.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return id, name, nil
}
