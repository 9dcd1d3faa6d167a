package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientName     string    `db:"patient_name" json:"patient_name,omitempty"`
	DoctorName      string    `db:"doctor_name" json:"doctor_name,omitempty"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Type            string    `db:"type" json:"type"`
	Status          Status    `db:"status" json:"status"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedBy       uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	PatientID       *uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID  `json:"doctor_id" validate:"required"`
	AppointmentDate time.Time  `json:"appointment_date" validate:"required"`
	DurationMinutes int        `json:"duration_minutes" validate:"omitempty,min=10,max=240"`
	Type            string     `json:"type" validate:"omitempty,oneof=consultation follow_up emergency routine_checkup"`
	Reason          *string    `json:"reason" validate:"omitempty,max=1000"`
}

type StatusRequest struct {
	Status Status  `json:"status" validate:"required,oneof=scheduled confirmed completed cancelled no_show"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

type Filter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
	From      *time.Time
	To        *time.Time
}
