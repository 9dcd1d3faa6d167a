package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/portal/pkg/pagination"
)

type Repository interface {
	// Create inserts the user and, when given, its profile row in one
	// transaction. A taken email is db.ErrConflict.
	Create(ctx context.Context, u *User, patient *PatientProfile, doctor *DoctorProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ProfileIDs returns the patient and doctor rows linked to a user.
	ProfileIDs(ctx context.Context, userID uuid.UUID) (patientID, doctorID *uuid.UUID, err error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error)
	List(ctx context.Context, f UserFilter, p pagination.Params) ([]*User, int, error)
}
