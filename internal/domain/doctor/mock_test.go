package doctor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

type mockRepo struct {
	mu         sync.Mutex
	data       map[uuid.UUID]*Doctor
	patients   map[uuid.UUID][]PatientSummary
	lastFilter Filter
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		data:     make(map[uuid.UUID]*Doctor),
		patients: make(map[uuid.UUID][]PatientSummary),
	}
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, _ pagination.Params) ([]*Doctor, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	var out []*Doctor
	for _, d := range m.data {
		if f.Available != nil && d.IsAvailable != *f.Available {
			continue
		}
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.data[d.ID] = &cp
	return nil
}

func (m *mockRepo) Patients(_ context.Context, doctorID uuid.UUID, _ pagination.Params) ([]PatientSummary, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.patients[doctorID], len(m.patients[doctorID]), nil
}
