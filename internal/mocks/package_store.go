package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// MockPackageStore implements store.PackageStore for testing.
type MockPackageStore struct {
	mu       sync.Mutex
	packages map[uuid.UUID]*domain.Package
	// tags holds attached tag IDs per package; tagNames resolves them for reads
	tags     map[uuid.UUID][]uuid.UUID
	tagNames map[uuid.UUID]domain.Tag

	CreateFn           func(ctx context.Context, pkg *domain.Package) error
	GetWithRelationsFn func(ctx context.Context, id uuid.UUID) (*domain.Package, error)
	AttachTagFn        func(ctx context.Context, packageID, tagID uuid.UUID) error
	ListIDsFn          func(ctx context.Context) ([]uuid.UUID, error)

	AttachCalls int
}

// NewMockPackageStore creates an empty MockPackageStore.
func NewMockPackageStore() *MockPackageStore {
	return &MockPackageStore{
		packages: make(map[uuid.UUID]*domain.Package),
		tags:     make(map[uuid.UUID][]uuid.UUID),
		tagNames: make(map[uuid.UUID]domain.Tag),
	}
}

var _ store.PackageStore = (*MockPackageStore)(nil)

// Add stores pkg, including its loaded author and contributors, without
// going through Create.
func (m *MockPackageStore) Add(pkg *domain.Package) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pkg
	m.packages[pkg.ID] = &cp
}

// RegisterTag makes a tag resolvable when building package reads.
func (m *MockPackageStore) RegisterTag(tag domain.Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tagNames[tag.ID] = tag
}

// TagIDs returns the tag IDs attached to a package.
func (m *MockPackageStore) TagIDs(packageID uuid.UUID) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.tags[packageID]...)
}

// Create implements store.PackageStore.
func (m *MockPackageStore) Create(ctx context.Context, pkg *domain.Package) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, pkg)
	}
	if err := pkg.Validate(); err != nil {
		return err
	}
	m.Add(pkg)
	return nil
}

// GetByID implements store.PackageStore.
func (m *MockPackageStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	pkg, err := m.GetWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	pkg.Author = nil
	pkg.Contributors = nil
	pkg.Tags = nil
	return pkg, nil
}

// GetWithRelations implements store.PackageStore.
func (m *MockPackageStore) GetWithRelations(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	if m.GetWithRelationsFn != nil {
		return m.GetWithRelationsFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	pkg, ok := m.packages[id]
	if !ok {
		return nil, store.ErrPackageNotFound
	}
	cp := *pkg
	cp.Contributors = append([]domain.Contributor(nil), pkg.Contributors...)
	cp.Tags = nil
	for _, tagID := range m.tags[id] {
		tag, ok := m.tagNames[tagID]
		if !ok {
			tag = domain.Tag{ID: tagID}
		}
		cp.Tags = append(cp.Tags, tag)
	}
	return &cp, nil
}

// ListIDs implements store.PackageStore.
func (m *MockPackageStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	if m.ListIDsFn != nil {
		return m.ListIDsFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	pkgs := make([]*domain.Package, 0, len(m.packages))
	for _, p := range m.packages {
		pkgs = append(pkgs, p)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].CreatedAt.Before(pkgs[j].CreatedAt) })

	ids := make([]uuid.UUID, len(pkgs))
	for i, p := range pkgs {
		ids[i] = p.ID
	}
	return ids, nil
}

// AttachTag implements store.PackageStore with set-union semantics.
func (m *MockPackageStore) AttachTag(ctx context.Context, packageID, tagID uuid.UUID) error {
	m.mu.Lock()
	m.AttachCalls++
	m.mu.Unlock()

	if m.AttachTagFn != nil {
		return m.AttachTagFn(ctx, packageID, tagID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.packages[packageID]; !ok {
		return store.ErrPackageNotFound
	}
	for _, existing := range m.tags[packageID] {
		if existing == tagID {
			return nil
		}
	}
	m.tags[packageID] = append(m.tags[packageID], tagID)
	return nil
}

// WithTx implements store.PackageStore; the mock has no transactions.
func (m *MockPackageStore) WithTx(tx *sql.Tx) store.PackageStore {
	return m
}
