package patient

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

type mockRepo struct {
	mu         sync.Mutex
	data       map[uuid.UUID]*Patient
	lastFilter Filter

	appointmentsErr error
	documentsErr    error
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) add(p *Patient) *Patient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.data[p.ID] = p
	return p
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, _ pagination.Params) ([]*Patient, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	var out []*Patient
	for _, p := range m.data {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[p.ID]; !ok {
		return db.ErrNotFound
	}
	cp := *p
	m.data[p.ID] = &cp
	return nil
}

func (m *mockRepo) RecentAppointments(context.Context, uuid.UUID, int) ([]AppointmentSummary, error) {
	if m.appointmentsErr != nil {
		return nil, m.appointmentsErr
	}
	return []AppointmentSummary{{ID: uuid.New(), DoctorName: "Greg House", Status: "scheduled"}}, nil
}

func (m *mockRepo) Prescriptions(context.Context, uuid.UUID, int) ([]PrescriptionSummary, error) {
	return []PrescriptionSummary{}, nil
}

func (m *mockRepo) LabTests(context.Context, uuid.UUID, int) ([]LabTestSummary, error) {
	return []LabTestSummary{{ID: uuid.New(), TestName: "CBC", Status: "ordered"}}, nil
}

func (m *mockRepo) Documents(context.Context, uuid.UUID, int) ([]DocumentSummary, error) {
	if m.documentsErr != nil {
		return nil, m.documentsErr
	}
	return []DocumentSummary{}, nil
}
