// Package directory answers the cross-entity lookups the fine-grained
// authorization checks need: which patient or doctor row belongs to a user,
// who to notify for a patient or doctor, and whether a doctor has a care
// relationship with a patient.
package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
)

// Contact is the user behind a patient or doctor row.
type Contact struct {
	UserID uuid.UUID
	Name   string
}

type Resolver interface {
	PatientIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	PatientContact(ctx context.Context, patientID uuid.UUID) (Contact, error)
	DoctorContact(ctx context.Context, doctorID uuid.UUID) (Contact, error)
	// HasCareRelationship is true when the doctor has at least one
	// appointment with the patient that was not cancelled.
	HasCareRelationship(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
}

// OwnPatientID returns the patient row of a patient caller. An account
// without a profile row is refused.
func OwnPatientID(ctx context.Context, r Resolver, caller *auth.Caller) (uuid.UUID, error) {
	id, err := r.PatientIDForUser(ctx, caller.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return uuid.Nil, httpx.Forbidden("no patient profile for this account")
	}
	return id, err
}

// OwnDoctorID is OwnPatientID for doctors.
func OwnDoctorID(ctx context.Context, r Resolver, caller *auth.Caller) (uuid.UUID, error) {
	id, err := r.DoctorIDForUser(ctx, caller.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return uuid.Nil, httpx.Forbidden("no doctor profile for this account")
	}
	return id, err
}

// RequireCare refuses a doctor without a care relationship to the patient.
func RequireCare(ctx context.Context, r Resolver, doctorID, patientID uuid.UUID) error {
	ok, err := r.HasCareRelationship(ctx, doctorID, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return httpx.Forbidden("no care relationship with this patient")
	}
	return nil
}
