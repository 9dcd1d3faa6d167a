// Package directorytest provides an in-memory directory.Resolver for tests.
package directorytest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/domain/directory"
	"github.com/carepoint/portal/internal/platform/db"
)

// Resolver is a map-backed directory.Resolver.
type Resolver struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]uuid.UUID // user -> patient
	doctors  map[uuid.UUID]uuid.UUID // user -> doctor
	contacts map[uuid.UUID]directory.Contact
	care     map[[2]uuid.UUID]bool
	broken   map[uuid.UUID]error
}

func New() *Resolver {
	return &Resolver{
		patients: make(map[uuid.UUID]uuid.UUID),
		doctors:  make(map[uuid.UUID]uuid.UUID),
		contacts: make(map[uuid.UUID]directory.Contact),
		care:     make(map[[2]uuid.UUID]bool),
		broken:   make(map[uuid.UUID]error),
	}
}

// AddPatient registers a patient row for userID and returns its id.
func (r *Resolver) AddPatient(userID uuid.UUID, name string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.patients[userID] = id
	r.contacts[id] = directory.Contact{UserID: userID, Name: name}
	return id
}

// AddDoctor registers a doctor row for userID and returns its id.
func (r *Resolver) AddDoctor(userID uuid.UUID, name string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.doctors[userID] = id
	r.contacts[id] = directory.Contact{UserID: userID, Name: name}
	return id
}

// Link records a care relationship.
func (r *Resolver) Link(doctorID, patientID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.care[[2]uuid.UUID{doctorID, patientID}] = true
}

func (r *Resolver) lookup(m map[uuid.UUID]uuid.UUID, key uuid.UUID) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := m[key]; ok {
		return id, nil
	}
	return uuid.Nil, db.ErrNotFound
}

func (r *Resolver) PatientIDForUser(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return r.lookup(r.patients, userID)
}

func (r *Resolver) DoctorIDForUser(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return r.lookup(r.doctors, userID)
}

// FailContact makes contact lookups for a patient or doctor id return err.
func (r *Resolver) FailContact(id uuid.UUID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken[id] = err
}

func (r *Resolver) contact(id uuid.UUID) (directory.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.broken[id]; err != nil {
		return directory.Contact{}, err
	}
	if c, ok := r.contacts[id]; ok {
		return c, nil
	}
	return directory.Contact{}, db.ErrNotFound
}

func (r *Resolver) PatientContact(_ context.Context, patientID uuid.UUID) (directory.Contact, error) {
	return r.contact(patientID)
}

func (r *Resolver) DoctorContact(_ context.Context, doctorID uuid.UUID) (directory.Contact, error) {
	return r.contact(doctorID)
}

func (r *Resolver) HasCareRelationship(_ context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.care[[2]uuid.UUID{doctorID, patientID}], nil
}
