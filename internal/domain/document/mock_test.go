package document

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

type mockRepo struct {
	mu        sync.Mutex
	data      map[uuid.UUID]*Document
	failWrite error
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[uuid.UUID]*Document)}
}

func (m *mockRepo) Create(_ context.Context, d *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	d.CreatedAt = time.Now()
	cp := *d
	m.data[d.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// List ignores CareDoctorID; the service tests check the filter it builds.
func (m *mockRepo) List(_ context.Context, f Filter, _ pagination.Params) ([]*Document, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Document
	for _, d := range m.data {
		if f.PatientID != nil && d.PatientID != *f.PatientID {
			continue
		}
		if f.Category != nil && d.Category != *f.Category {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) Delete(_ context.Context, id, patientID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[id]
	if !ok || d.PatientID != patientID {
		return "", db.ErrNotFound
	}
	delete(m.data, id)
	return d.StorageKey, nil
}

type filterRecorder struct {
	*mockRepo
	last Filter
}

func (r *filterRecorder) List(ctx context.Context, f Filter, p pagination.Params) ([]*Document, int, error) {
	r.last = f
	return r.mockRepo.List(ctx, f, p)
}
