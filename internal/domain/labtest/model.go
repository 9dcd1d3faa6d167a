package labtest

import (
	"time"

	"github.com/google/uuid"
)

type LabTest struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	PatientID           uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID            uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientName         string     `db:"patient_name" json:"patient_name,omitempty"`
	DoctorName          string     `db:"doctor_name" json:"doctor_name,omitempty"`
	AppointmentID       *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	TestName            string     `db:"test_name" json:"test_name"`
	TestType            *string    `db:"test_type" json:"test_type,omitempty"`
	Status              Status     `db:"status" json:"status"`
	OrderedDate         time.Time  `db:"ordered_date" json:"ordered_date"`
	SampleCollectedDate *time.Time `db:"sample_collected_date" json:"sample_collected_date,omitempty"`
	CompletedDate       *time.Time `db:"completed_date" json:"completed_date,omitempty"`
	Results             *string    `db:"results" json:"results,omitempty"`
	NormalRange         *string    `db:"normal_range" json:"normal_range,omitempty"`
	Notes               *string    `db:"notes" json:"notes,omitempty"`
	PerformedBy         *uuid.UUID `db:"performed_by" json:"performed_by,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" validate:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	TestName      string     `json:"test_name" validate:"required,max=200"`
	TestType      *string    `json:"test_type" validate:"omitempty,max=100"`
	NormalRange   *string    `json:"normal_range" validate:"omitempty,max=200"`
	Notes         *string    `json:"notes" validate:"omitempty,max=2000"`
}

type StatusRequest struct {
	Status  Status  `json:"status" validate:"required,oneof=ordered sample_collected in_progress completed cancelled"`
	Results *string `json:"results" validate:"omitempty,max=10000"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

type Filter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
}

// Transition is one conditional status change.
type Transition struct {
	From, To    Status
	Results     *string
	Notes       *string
	PerformedBy uuid.UUID
}
