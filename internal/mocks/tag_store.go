package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// MockTagStore implements store.TagStore for testing, keyed by tag name.
type MockTagStore struct {
	mu     sync.Mutex
	byName map[string]domain.Tag

	FindOrCreateFn func(ctx context.Context, tag *domain.Tag) (uuid.UUID, error)

	Created int
}

// NewMockTagStore creates an empty MockTagStore.
func NewMockTagStore() *MockTagStore {
	return &MockTagStore{byName: make(map[string]domain.Tag)}
}

var _ store.TagStore = (*MockTagStore)(nil)

// FindOrCreate implements store.TagStore.
func (m *MockTagStore) FindOrCreate(ctx context.Context, tag *domain.Tag) (uuid.UUID, error) {
	if m.FindOrCreateFn != nil {
		return m.FindOrCreateFn(ctx, tag)
	}
	if err := tag.Validate(); err != nil {
		return uuid.Nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byName[tag.Name]; ok {
		return existing.ID, nil
	}
	stored := *tag
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	m.byName[tag.Name] = stored
	m.Created++
	return stored.ID, nil
}

// GetByName implements store.TagStore.
func (m *MockTagStore) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tag, ok := m.byName[name]
	if !ok {
		return nil, store.ErrTagNotFound
	}
	return &tag, nil
}

// Count returns the number of distinct tags stored.
func (m *MockTagStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byName)
}

// WithTx implements store.TagStore; the mock has no transactions.
func (m *MockTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return m
}
