package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/auth"
)

type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         auth.Role  `db:"role" json:"role"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// PatientProfile is the patients row created alongside a patient account.
type PatientProfile struct {
	ID          uuid.UUID
	DateOfBirth *time.Time
	Gender      *string
}

// DoctorProfile is the doctors row created alongside a doctor account.
type DoctorProfile struct {
	ID             uuid.UUID
	Specialization string
	LicenseNumber  string
	Department     *string
}

// Me is the current-user view: the user row plus its profile ids.
type Me struct {
	*User
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
	DoctorID  *uuid.UUID `json:"doctor_id,omitempty"`
}

type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	FirstName   string  `json:"first_name" validate:"required,max=100"`
	LastName    string  `json:"last_name" validate:"required,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=male female other"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Email          string  `json:"email" validate:"required,email,max=255"`
	Password       string  `json:"password" validate:"required,min=8,max=72"`
	Role           string  `json:"role" validate:"required,oneof=admin doctor nurse pharmacist lab_technician patient"`
	FirstName      string  `json:"first_name" validate:"required,max=100"`
	LastName       string  `json:"last_name" validate:"required,max=100"`
	Phone          *string `json:"phone" validate:"omitempty,max=30"`
	Specialization string  `json:"specialization" validate:"required_if=Role doctor,max=100"`
	LicenseNumber  string  `json:"license_number" validate:"required_if=Role doctor,max=50"`
	Department     *string `json:"department" validate:"omitempty,max=100"`
}

type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// UserFilter narrows the admin user list.
type UserFilter struct {
	Role   *auth.Role
	Search string
	Active *bool
}
