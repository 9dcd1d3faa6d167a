package doctor

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID                uuid.UUID `db:"id" json:"id"`
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	Email             string    `db:"email" json:"email"`
	Phone             *string   `db:"phone" json:"phone,omitempty"`
	Specialization    string    `db:"specialization" json:"specialization"`
	LicenseNumber     string    `db:"license_number" json:"license_number"`
	Department        *string   `db:"department" json:"department,omitempty"`
	YearsOfExperience *int      `db:"years_of_experience" json:"years_of_experience,omitempty"`
	ConsultationFee   *float64  `db:"consultation_fee" json:"consultation_fee,omitempty"`
	Bio               *string   `db:"bio" json:"bio,omitempty"`
	IsAvailable       bool      `db:"is_available" json:"is_available"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type UpdateRequest struct {
	Specialization    *string  `json:"specialization" validate:"omitempty,min=2,max=100"`
	Department        *string  `json:"department" validate:"omitempty,max=100"`
	YearsOfExperience *int     `json:"years_of_experience" validate:"omitempty,min=0,max=70"`
	ConsultationFee   *float64 `json:"consultation_fee" validate:"omitempty,min=0"`
	Bio               *string  `json:"bio" validate:"omitempty,max=2000"`
	IsAvailable       *bool    `json:"is_available"`
}

type Filter struct {
	Specialization string
	Search         string
	Available      *bool
}

// PatientSummary is one row of a doctor's patient list.
type PatientSummary struct {
	ID              uuid.UUID  `json:"id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	LastAppointment *time.Time `json:"last_appointment,omitempty"`
	Appointments    int        `json:"appointment_count"`
}
