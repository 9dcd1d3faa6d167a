package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/pkg/pagination"
)

type Repository interface {
	// Create returns db.ErrConflict when the slot index rejects the row.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Appointment, int, error)
	// SlotTaken reports whether the doctor already has an appointment at
	// exactly this time that is neither cancelled nor completed.
	SlotTaken(ctx context.Context, doctorID uuid.UUID, at time.Time) (bool, error)
	// DoctorAvailable returns db.ErrNotFound for an unknown doctor.
	DoctorAvailable(ctx context.Context, doctorID uuid.UUID) (bool, error)
	// UpdateStatus only applies when the stored status is still from; otherwise
	// it returns db.ErrNotFound.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, notes *string) (*Appointment, error)
}
