package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/platform/logger"
	"github.com/phrazzld/pkgwatch/internal/redact"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the NotificationStore interface.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload := n.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, package_id, payload, created_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.UserID, string(n.Type), n.PackageID, []byte(payload), n.CreatedAt, n.ReadAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("notification references missing user or package",
				slog.String("user_id", n.UserID.String()),
				slog.String("package_id", n.PackageID.String()))
			return fmt.Errorf("%w: user or package does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create notification",
			slog.String("notification_id", n.ID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err)
	}
	return nil
}

// ListForUser implements store.NotificationStore.ListForUser
func (s *PostgresNotificationStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, package_id, payload, created_at, read_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC
	`, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list notifications",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var typ string
		var payload []byte
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.PackageID, &payload, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		n.Type = domain.NotificationType(typ)
		n.Payload = payload
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}
