package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository holds the read-only summary queries behind each dashboard
// section.
type Repository interface {
	UsersByRole(ctx context.Context) (map[string]int, error)
	RecentUsers(ctx context.Context, limit int) ([]UserItem, error)
	CountAppointments(ctx context.Context, from, to time.Time) (int, error)
	Appointments(ctx context.Context, q AppointmentQuery) ([]AppointmentItem, error)
	CountOpenLabTests(ctx context.Context) (int, error)
	LabTestsByStatus(ctx context.Context) (map[string]int, error)
	LabTests(ctx context.Context, q LabQuery) ([]LabTestItem, error)
	ActivePrescriptions(ctx context.Context, patientID *uuid.UUID, limit int) ([]PrescriptionItem, error)
	LowStock(ctx context.Context, limit int) ([]StockItem, error)
	CountDoctorPatients(ctx context.Context, doctorID uuid.UUID) (int, error)
	RecentPatients(ctx context.Context, limit int) ([]PatientItem, error)
	UnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error)
}
