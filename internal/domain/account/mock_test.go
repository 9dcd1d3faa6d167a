package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

type mockRepo struct {
	mu       sync.Mutex
	data     map[uuid.UUID]*User
	patients map[uuid.UUID]*PatientProfile
	doctors  map[uuid.UUID]*DoctorProfile
	touched  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		data:     make(map[uuid.UUID]*User),
		patients: make(map[uuid.UUID]*PatientProfile),
		doctors:  make(map[uuid.UUID]*DoctorProfile),
	}
}

func (m *mockRepo) Create(_ context.Context, u *User, patient *PatientProfile, doctor *DoctorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.data {
		if existing.Email == u.Email {
			return db.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.IsActive = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.data[u.ID] = u
	if patient != nil {
		patient.ID = uuid.New()
		m.patients[u.ID] = patient
	}
	if doctor != nil {
		doctor.ID = uuid.New()
		m.doctors[u.ID] = doctor
	}
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.data {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockRepo) ProfileIDs(_ context.Context, userID uuid.UUID) (*uuid.UUID, *uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var patientID, doctorID *uuid.UUID
	if p, ok := m.patients[userID]; ok {
		patientID = &p.ID
	}
	if d, ok := m.doctors[userID]; ok {
		doctorID = &d.ID
	}
	return patientID, doctorID, nil
}

func (m *mockRepo) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.data[id].LastLoginAt = &now
	m.touched++
	return nil
}

func (m *mockRepo) SetActive(_ context.Context, id uuid.UUID, active bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	u.IsActive = active
	return u, nil
}

func (m *mockRepo) List(_ context.Context, f UserFilter, p pagination.Params) ([]*User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*User
	for _, u := range m.data {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Email+u.FirstName+u.LastName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}
