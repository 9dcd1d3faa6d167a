package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/sections"
)

type Patient struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	UserID                uuid.UUID  `db:"user_id" json:"user_id"`
	FirstName             string     `db:"first_name" json:"first_name"`
	LastName              string     `db:"last_name" json:"last_name"`
	Email                 string     `db:"email" json:"email"`
	Phone                 *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth           *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender                *string    `db:"gender" json:"gender,omitempty"`
	BloodType             *string    `db:"blood_type" json:"blood_type,omitempty"`
	Address               *string    `db:"address" json:"address,omitempty"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	Allergies             *string    `db:"allergies" json:"allergies,omitempty"`
	MedicalHistory        *string    `db:"medical_history" json:"medical_history,omitempty"`
	InsuranceProvider     *string    `db:"insurance_provider" json:"insurance_provider,omitempty"`
	InsuranceNumber       *string    `db:"insurance_number" json:"insurance_number,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// UpdateRequest holds the fields a patient may change on their own record.
// Nil fields are left unchanged.
type UpdateRequest struct {
	Phone                 *string `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth           *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender                *string `json:"gender" validate:"omitempty,oneof=male female other"`
	BloodType             *string `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Address               *string `json:"address" validate:"omitempty,max=500"`
	EmergencyContactName  *string `json:"emergency_contact_name" validate:"omitempty,max=200"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" validate:"omitempty,max=30"`
	Allergies             *string `json:"allergies" validate:"omitempty,max=2000"`
	MedicalHistory        *string `json:"medical_history" validate:"omitempty,max=5000"`
	InsuranceProvider     *string `json:"insurance_provider" validate:"omitempty,max=200"`
	InsuranceNumber       *string `json:"insurance_number" validate:"omitempty,max=100"`
}

// Filter narrows the patient list. DoctorID limits it to patients with a
// care relationship to that doctor.
type Filter struct {
	Search   string
	DoctorID *uuid.UUID
}

type AppointmentSummary struct {
	ID              uuid.UUID `json:"id"`
	DoctorName      string    `json:"doctor_name"`
	AppointmentDate time.Time `json:"appointment_date"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
}

type PrescriptionSummary struct {
	ID             uuid.UUID `json:"id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	Frequency      string    `json:"frequency"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type LabTestSummary struct {
	ID            uuid.UUID  `json:"id"`
	TestName      string     `json:"test_name"`
	Status        string     `json:"status"`
	OrderedDate   time.Time  `json:"ordered_date"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
}

type DocumentSummary struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	Category    string    `json:"category"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile is the aggregated patient view. Each related list is loaded on its
// own and may come back degraded.
type Profile struct {
	Patient       *Patient                                 `json:"patient"`
	Appointments  sections.Result[[]AppointmentSummary]  `json:"appointments"`
	Prescriptions sections.Result[[]PrescriptionSummary] `json:"prescriptions"`
	LabTests      sections.Result[[]LabTestSummary]      `json:"lab_tests"`
	Documents     sections.Result[[]DocumentSummary]     `json:"documents"`
}
