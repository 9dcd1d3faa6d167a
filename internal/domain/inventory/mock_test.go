package inventory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

type adjustment struct {
	itemID uuid.UUID
	delta  int
	reason string
	by     uuid.UUID
}

type mockRepo struct {
	mu          sync.Mutex
	data        map[uuid.UUID]*Item
	adjustments []adjustment
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[uuid.UUID]*Item)}
}

func (m *mockRepo) skuTaken(sku *string, except uuid.UUID) bool {
	if sku == nil {
		return false
	}
	for id, it := range m.data {
		if id != except && it.SKU != nil && *it.SKU == *sku {
			return true
		}
	}
	return false
}

func (m *mockRepo) Create(_ context.Context, i *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skuTaken(i.SKU, uuid.Nil) {
		return db.ErrConflict
	}
	i.ID = uuid.New()
	i.CreatedAt = time.Now()
	i.UpdatedAt = i.CreatedAt
	cp := *i
	m.data[i.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, _ pagination.Params) ([]*Item, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Item
	for _, i := range m.data {
		if f.Category != nil && i.Category != *f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(i.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.LowStock && !i.LowStock() {
			continue
		}
		cp := *i
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) Update(_ context.Context, i *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[i.ID]; !ok {
		return db.ErrNotFound
	}
	if m.skuTaken(i.SKU, i.ID) {
		return db.ErrConflict
	}
	cp := *i
	m.data[i.ID] = &cp
	return nil
}

func (m *mockRepo) Adjust(_ context.Context, id uuid.UUID, delta int, reason string, by uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.data[id]
	if !ok || i.Quantity+delta < 0 {
		return 0, db.ErrNotFound
	}
	i.Quantity += delta
	m.adjustments = append(m.adjustments, adjustment{id, delta, reason, by})
	return i.Quantity, nil
}
