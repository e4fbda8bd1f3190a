// Package notify delivers user notifications about packages.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/platform/logger"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// ErrNilStore is returned when a StoreNotifier is built without a store.
var ErrNilStore = errors.New("notification store cannot be nil")

// Notifier sends a notification of the given type about pkg to a user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, t domain.NotificationType, pkg *domain.Package) error
}

// StoreNotifier delivers notifications in-app by persisting them, where the
// user's inbox reads them from.
type StoreNotifier struct {
	store  store.NotificationStore
	logger *slog.Logger
}

// NewStoreNotifier creates a Notifier backed by a NotificationStore.
func NewStoreNotifier(s store.NotificationStore, logger *slog.Logger) (*StoreNotifier, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreNotifier{
		store:  s,
		logger: logger.With("component", "store_notifier"),
	}, nil
}

var _ Notifier = (*StoreNotifier)(nil)

// Notify implements Notifier.
func (n *StoreNotifier) Notify(
	ctx context.Context,
	userID uuid.UUID,
	t domain.NotificationType,
	pkg *domain.Package,
) error {
	log := logger.FromContextOrDefault(ctx, n.logger)

	notification, err := domain.NewNotification(userID, t, pkg)
	if err != nil {
		return fmt.Errorf("failed to build notification: %w", err)
	}

	if err := n.store.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	log.Info("notification delivered",
		"notification_id", notification.ID,
		"notification_type", string(t),
		"user_id", userID,
		"package_id", pkg.ID)
	return nil
}
