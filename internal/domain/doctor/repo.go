package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/portal/pkg/pagination"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Doctor, int, error)
	Update(ctx context.Context, d *Doctor) error
	// Patients lists patients with at least one appointment with the doctor
	// that was not cancelled.
	Patients(ctx context.Context, doctorID uuid.UUID, p pagination.Params) ([]PatientSummary, int, error)
}
