package appointment

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
	data      map[uuid.UUID]*Appointment
	available map[uuid.UUID]bool
	// raceOnCreate makes Create behave as if the unique index fired after a
	// clean pre-check.
	raceOnCreate bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		data:      make(map[uuid.UUID]*Appointment),
		available: make(map[uuid.UUID]bool),
	}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raceOnCreate {
		return db.ErrConflict
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.data[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, _ pagination.Params) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Appointment
	for _, a := range m.data {
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) SlotTaken(_ context.Context, doctorID uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.data {
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(at) && a.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) DoctorAvailable(_ context.Context, doctorID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ok, known := m.available[doctorID]
	if !known {
		return false, db.ErrNotFound
	}
	return ok, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status, notes *string) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.data[id]
	if !ok || a.Status != from {
		return nil, db.ErrNotFound
	}
	a.Status = to
	if notes != nil {
		a.Notes = notes
	}
	cp := *a
	return &cp, nil
}
