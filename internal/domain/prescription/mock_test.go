package prescription

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
	data map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, rx *Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rx.ID = uuid.New()
	rx.CreatedAt = time.Now()
	rx.UpdatedAt = rx.CreatedAt
	cp := *rx
	m.data[rx.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rx, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *rx
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, _ pagination.Params) ([]*Prescription, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Prescription
	for _, rx := range m.data {
		if f.PatientID != nil && rx.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && rx.DoctorID != *f.DoctorID {
			continue
		}
		if f.Status != nil && rx.Status != *f.Status {
			continue
		}
		cp := *rx
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status, filledBy *uuid.UUID) (*Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rx, ok := m.data[id]
	if !ok || rx.Status != from {
		return nil, db.ErrNotFound
	}
	rx.Status = to
	if to == StatusFilled {
		now := time.Now()
		rx.FilledBy = filledBy
		rx.FilledAt = &now
	}
	cp := *rx
	return &cp, nil
}
