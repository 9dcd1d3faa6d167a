package prescription

import (
	"time"

	"github.com/google/uuid"
)

type Prescription struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientName    string     `db:"patient_name" json:"patient_name,omitempty"`
	DoctorName     string     `db:"doctor_name" json:"doctor_name,omitempty"`
	AppointmentID  *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	MedicationName string     `db:"medication_name" json:"medication_name"`
	Dosage         string     `db:"dosage" json:"dosage"`
	Frequency      string     `db:"frequency" json:"frequency"`
	Duration       *string    `db:"duration" json:"duration,omitempty"`
	Quantity       *int       `db:"quantity" json:"quantity,omitempty"`
	Refills        int        `db:"refills" json:"refills"`
	Instructions   *string    `db:"instructions" json:"instructions,omitempty"`
	Status         Status     `db:"status" json:"status"`
	FilledBy       *uuid.UUID `db:"filled_by" json:"filled_by,omitempty"`
	FilledAt       *time.Time `db:"filled_at" json:"filled_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	PatientID      uuid.UUID  `json:"patient_id" validate:"required"`
	AppointmentID  *uuid.UUID `json:"appointment_id"`
	MedicationName string     `json:"medication_name" validate:"required,max=200"`
	Dosage         string     `json:"dosage" validate:"required,max=100"`
	Frequency      string     `json:"frequency" validate:"required,max=100"`
	Duration       *string    `json:"duration" validate:"omitempty,max=100"`
	Quantity       *int       `json:"quantity" validate:"omitempty,min=1"`
	Refills        int        `json:"refills" validate:"min=0,max=12"`
	Instructions   *string    `json:"instructions" validate:"omitempty,max=2000"`
}

type StatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=active filled completed cancelled"`
}

type Filter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
}
