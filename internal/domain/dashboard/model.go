package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/sections"
)

// Dashboard is the role-scoped landing view. Sections holds one of the
// *Sections structs below.
type Dashboard struct {
	Role        auth.Role `json:"role"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    any       `json:"sections"`
}

type AppointmentItem struct {
	ID              uuid.UUID `json:"id"`
	PatientName     string    `json:"patient_name"`
	DoctorName      string    `json:"doctor_name"`
	AppointmentDate time.Time `json:"appointment_date"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
}

type LabTestItem struct {
	ID          uuid.UUID  `json:"id"`
	PatientName string     `json:"patient_name"`
	TestName    string     `json:"test_name"`
	Status      string     `json:"status"`
	OrderedDate time.Time  `json:"ordered_date"`
	CompletedAt *time.Time `json:"completed_date,omitempty"`
}

type PrescriptionItem struct {
	ID             uuid.UUID `json:"id"`
	PatientName    string    `json:"patient_name"`
	DoctorName     string    `json:"doctor_name"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	CreatedAt      time.Time `json:"created_at"`
}

type StockItem struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorder_level"`
	Unit         string    `json:"unit"`
}

type UserItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type PatientItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AppointmentQuery selects non-cancelled appointments starting in [From, To).
// A zero To leaves the range open.
type AppointmentQuery struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	From      time.Time
	To        time.Time
	Limit     int
}

// LabQuery selects lab tests, newest order first.
type LabQuery struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	OpenOnly  bool
	Limit     int
}

type AdminSections struct {
	UsersByRole       sections.Result[map[string]int] `json:"users_by_role"`
	AppointmentsToday sections.Result[int]            `json:"appointments_today"`
	PendingLabTests   sections.Result[int]            `json:"pending_lab_tests"`
	LowStock          sections.Result[[]StockItem]    `json:"low_stock"`
	RecentUsers       sections.Result[[]UserItem]     `json:"recent_users"`
}

type DoctorSections struct {
	TodayAppointments sections.Result[[]AppointmentItem] `json:"today_appointments"`
	PatientCount      sections.Result[int]               `json:"patient_count"`
	PendingLabOrders  sections.Result[[]LabTestItem]     `json:"pending_lab_orders"`
	Unread            sections.Result[int]               `json:"unread_notifications"`
}

type NurseSections struct {
	TodayAppointments sections.Result[[]AppointmentItem] `json:"today_appointments"`
	RecentPatients    sections.Result[[]PatientItem]     `json:"recent_patients"`
}

type PharmacistSections struct {
	ActivePrescriptions sections.Result[[]PrescriptionItem] `json:"active_prescriptions"`
	LowStock            sections.Result[[]StockItem]        `json:"low_stock"`
}

type LabSections struct {
	ByStatus sections.Result[map[string]int] `json:"lab_tests_by_status"`
	Queue    sections.Result[[]LabTestItem]  `json:"queue"`
}

type PatientSections struct {
	UpcomingAppointments sections.Result[[]AppointmentItem]  `json:"upcoming_appointments"`
	ActivePrescriptions  sections.Result[[]PrescriptionItem] `json:"active_prescriptions"`
	RecentLabTests       sections.Result[[]LabTestItem]      `json:"recent_lab_tests"`
	Unread               sections.Result[int]                `json:"unread_notifications"`
}
