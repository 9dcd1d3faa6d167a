package labtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

type mockRepo struct {
	mu   sync.Mutex
	data map[uuid.UUID]*LabTest
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[uuid.UUID]*LabTest)}
}

func (m *mockRepo) Create(_ context.Context, t *LabTest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.New()
	t.OrderedDate = time.Now()
	t.CreatedAt = t.OrderedDate
	t.UpdatedAt = t.OrderedDate
	cp := *t
	m.data[t.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*LabTest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, _ pagination.Params) ([]*LabTest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*LabTest
	for _, t := range m.data {
		if f.PatientID != nil && t.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && t.DoctorID != *f.DoctorID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, tr Transition) (*LabTest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.data[id]
	if !ok || t.Status != tr.From {
		return nil, db.ErrNotFound
	}
	now := time.Now()
	t.Status = tr.To
	switch tr.To {
	case StatusSampleCollected:
		t.SampleCollectedDate = &now
	case StatusCompleted:
		t.CompletedDate = &now
	}
	if tr.Results != nil {
		t.Results = tr.Results
	}
	if tr.Notes != nil {
		t.Notes = tr.Notes
	}
	by := tr.PerformedBy
	t.PerformedBy = &by
	cp := *t
	return &cp, nil
}
