package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/portal/pkg/pagination"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Patient, int, error)
	Update(ctx context.Context, p *Patient) error

	RecentAppointments(ctx context.Context, patientID uuid.UUID, limit int) ([]AppointmentSummary, error)
	Prescriptions(ctx context.Context, patientID uuid.UUID, limit int) ([]PrescriptionSummary, error)
	LabTests(ctx context.Context, patientID uuid.UUID, limit int) ([]LabTestSummary, error)
	Documents(ctx context.Context, patientID uuid.UUID, limit int) ([]DocumentSummary, error)
}
