package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

// MockLedgerRepository is an in-memory implementation of LedgerRepository.
// Individual methods can be overridden via the *Func fields.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	entries map[domain.LedgerKey]*domain.LedgerEntry

	CreateFunc     func(ctx context.Context, entry *domain.LedgerEntry) error
	UpdateFunc     func(ctx context.Context, entry *domain.LedgerEntry, expectedVersion int64) error
	GetFunc        func(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error)
	ListRecentFunc func(ctx context.Context, series *domain.Series, limit, offset int) ([]*domain.LedgerEntry, error)
	DeleteFunc     func(ctx context.Context, key domain.LedgerKey) error
	MaxNumberFunc  func(ctx context.Context, series domain.Series) (int64, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		entries: make(map[domain.LedgerKey]*domain.LedgerEntry),
	}
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[entry.Key]; exists {
		return fmt.Errorf("%w: %s already exists", domain.ErrConflict, entry.Key)
	}
	cp := *entry
	m.entries[entry.Key] = &cp
	return nil
}

func (m *MockLedgerRepository) Update(ctx context.Context, entry *domain.LedgerEntry, expectedVersion int64) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, entry, expectedVersion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.entries[entry.Key]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, entry.Key)
	}
	if existing.Version != expectedVersion {
		return fmt.Errorf("%w: %s version %d, expected %d", domain.ErrConflict, entry.Key, existing.Version, expectedVersion)
	}
	entry.Version = expectedVersion + 1
	entry.CreatedAt = existing.CreatedAt
	cp := *entry
	m.entries[entry.Key] = &cp
	return nil
}

func (m *MockLedgerRepository) Get(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, ok := m.entries[key]; ok {
		cp := *entry
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
}

func (m *MockLedgerRepository) ListRecent(ctx context.Context, series *domain.Series, limit, offset int) ([]*domain.LedgerEntry, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, series, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*domain.LedgerEntry
	for _, entry := range m.entries {
		if entry.Deleted {
			continue
		}
		if series != nil && entry.Key.Series != *series {
			continue
		}
		cp := *entry
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Key.Series != all[j].Key.Series {
			return all[i].Key.Series < all[j].Key.Series
		}
		return all[i].Key.Number > all[j].Key.Number
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockLedgerRepository) Delete(ctx context.Context, key domain.LedgerKey) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[key]; ok {
		entry.Deleted = true
	}
	return nil
}

func (m *MockLedgerRepository) MaxNumber(ctx context.Context, series domain.Series) (int64, error) {
	if m.MaxNumberFunc != nil {
		return m.MaxNumberFunc(ctx, series)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var max int64
	for key := range m.entries {
		if key.Series == series && key.Number > max {
			max = key.Number
		}
	}
	return max, nil
}

// MockRenderer records render requests and returns canned results.
type MockRenderer struct {
	mu       sync.Mutex
	Requests []usecase.RenderRequest

	RenderFunc func(ctx context.Context, req usecase.RenderRequest) (*usecase.RenderResult, error)
}

func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

func (m *MockRenderer) Render(ctx context.Context, req usecase.RenderRequest) (*usecase.RenderResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, req)
	}
	return &usecase.RenderResult{
		FilePath:    "/tmp/" + req.Metadata.Filename,
		DisplayName: req.Metadata.Filename,
	}, nil
}

// MockIDGenerator returns a fixed or overridden ID.
type MockIDGenerator struct {
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return "test-id"
}

// MockCache is an in-memory cache.
type MockCache struct {
	mu    sync.RWMutex
	items map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// MockNotifier records published events.
type MockNotifier struct {
	mu     sync.Mutex
	Events []string
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(event string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}
