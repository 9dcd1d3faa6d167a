package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	mu       sync.Mutex
	fail     map[string]error
	apptQs   []AppointmentQuery
	labQs    []LabQuery
	rxFilter []*uuid.UUID

	appointments []AppointmentItem
	unread       map[uuid.UUID]int
	patients     map[uuid.UUID]int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		fail:     make(map[string]error),
		unread:   make(map[uuid.UUID]int),
		patients: make(map[uuid.UUID]int),
	}
}

func (m *mockRepo) err(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fail[name]
}

func (m *mockRepo) UsersByRole(context.Context) (map[string]int, error) {
	if err := m.err("users_by_role"); err != nil {
		return nil, err
	}
	return map[string]int{"admin": 1, "patient": 12}, nil
}

func (m *mockRepo) RecentUsers(context.Context, int) ([]UserItem, error) {
	if err := m.err("recent_users"); err != nil {
		return nil, err
	}
	return []UserItem{{ID: uuid.New(), Name: "New User", Role: "patient"}}, nil
}

func (m *mockRepo) CountAppointments(_ context.Context, from, to time.Time) (int, error) {
	if err := m.err("count_appointments"); err != nil {
		return 0, err
	}
	n := 0
	for _, a := range m.appointments {
		if !a.AppointmentDate.Before(from) && a.AppointmentDate.Before(to) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) Appointments(_ context.Context, q AppointmentQuery) ([]AppointmentItem, error) {
	m.mu.Lock()
	m.apptQs = append(m.apptQs, q)
	m.mu.Unlock()
	if err := m.err("appointments"); err != nil {
		return nil, err
	}
	return m.appointments, nil
}

func (m *mockRepo) CountOpenLabTests(context.Context) (int, error) {
	if err := m.err("open_lab_tests"); err != nil {
		return 0, err
	}
	return 4, nil
}

func (m *mockRepo) LabTestsByStatus(context.Context) (map[string]int, error) {
	if err := m.err("lab_by_status"); err != nil {
		return nil, err
	}
	return map[string]int{"ordered": 3, "completed": 9}, nil
}

func (m *mockRepo) LabTests(_ context.Context, q LabQuery) ([]LabTestItem, error) {
	m.mu.Lock()
	m.labQs = append(m.labQs, q)
	m.mu.Unlock()
	if err := m.err("lab_tests"); err != nil {
		return nil, err
	}
	return []LabTestItem{{ID: uuid.New(), TestName: "CBC", Status: "ordered"}}, nil
}

func (m *mockRepo) ActivePrescriptions(_ context.Context, patientID *uuid.UUID, _ int) ([]PrescriptionItem, error) {
	m.mu.Lock()
	m.rxFilter = append(m.rxFilter, patientID)
	m.mu.Unlock()
	if err := m.err("prescriptions"); err != nil {
		return nil, err
	}
	return []PrescriptionItem{{ID: uuid.New(), MedicationName: "Amoxicillin"}}, nil
}

func (m *mockRepo) LowStock(context.Context, int) ([]StockItem, error) {
	if err := m.err("low_stock"); err != nil {
		return nil, err
	}
	return []StockItem{{ID: uuid.New(), Name: "Gauze", Quantity: 2, ReorderLevel: 10}}, nil
}

func (m *mockRepo) CountDoctorPatients(_ context.Context, doctorID uuid.UUID) (int, error) {
	if err := m.err("doctor_patients"); err != nil {
		return 0, err
	}
	return m.patients[doctorID], nil
}

func (m *mockRepo) RecentPatients(context.Context, int) ([]PatientItem, error) {
	if err := m.err("recent_patients"); err != nil {
		return nil, err
	}
	return []PatientItem{{ID: uuid.New(), Name: "Ada Lovelace"}}, nil
}

func (m *mockRepo) UnreadNotifications(_ context.Context, userID uuid.UUID) (int, error) {
	if err := m.err("unread"); err != nil {
		return 0, err
	}
	return m.unread[userID], nil
}
