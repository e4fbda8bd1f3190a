package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
)

// Notification records one call to MockNotifier.Notify.
type Notification struct {
	UserID    uuid.UUID
	Type      domain.NotificationType
	PackageID uuid.UUID
}

// MockNotifier records notifications instead of delivering them.
type MockNotifier struct {
	mu   sync.Mutex
	sent []Notification

	NotifyFn func(ctx context.Context, userID uuid.UUID, t domain.NotificationType, pkg *domain.Package) error
}

// NewMockNotifier creates a MockNotifier with no recorded calls.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify records the call and then runs NotifyFn, if set.
func (m *MockNotifier) Notify(
	ctx context.Context,
	userID uuid.UUID,
	t domain.NotificationType,
	pkg *domain.Package,
) error {
	m.mu.Lock()
	m.sent = append(m.sent, Notification{UserID: userID, Type: t, PackageID: pkg.ID})
	m.mu.Unlock()

	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, userID, t, pkg)
	}
	return nil
}

// Sent returns a copy of all recorded notifications.
func (m *MockNotifier) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.sent...)
}

// SentTo returns how many notifications were sent to userID.
func (m *MockNotifier) SentTo(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.UserID == userID {
			n++
		}
	}
	return n
}
