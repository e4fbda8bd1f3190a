package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// MockNotificationStore implements store.NotificationStore for testing.
type MockNotificationStore struct {
	mu            sync.Mutex
	notifications []*domain.Notification

	CreateFn      func(ctx context.Context, n *domain.Notification) error
	ListForUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
}

// NewMockNotificationStore creates an empty MockNotificationStore.
func NewMockNotificationStore() *MockNotificationStore {
	return &MockNotificationStore{}
}

var _ store.NotificationStore = (*MockNotificationStore)(nil)

// Create implements store.NotificationStore.
func (m *MockNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

// ListForUser implements store.NotificationStore, newest first.
func (m *MockNotificationStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].UserID == userID {
			out = append(out, m.notifications[i])
		}
	}
	return out, nil
}

// CreateCount returns how many notifications were stored.
func (m *MockNotificationStore) CreateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}
