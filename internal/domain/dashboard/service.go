package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/domain/directory"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/sections"
)

// listLimit caps every list section.
const listLimit = 10

type Service struct {
	repo Repository
	dir  directory.Resolver
	now  func() time.Time
}

func NewService(repo Repository, dir directory.Resolver) *Service {
	return &Service{repo: repo, dir: dir, now: time.Now}
}

// today returns the bounds of the current UTC day.
func (s *Service) today() (time.Time, time.Time) {
	start := s.now().UTC().Truncate(24 * time.Hour)
	return start, start.Add(24 * time.Hour)
}

// Get builds the caller's dashboard. Sections load concurrently and each one
// degrades on its own; only a missing profile row fails the request.
func (s *Service) Get(ctx context.Context, caller *auth.Caller) (*Dashboard, error) {
	var (
		out any
		err error
	)
	switch caller.Role {
	case auth.RoleAdmin:
		out = s.admin(ctx)
	case auth.RoleDoctor:
		out, err = s.doctor(ctx, caller)
	case auth.RoleNurse:
		out = s.nurse(ctx)
	case auth.RolePharmacist:
		out = s.pharmacist(ctx)
	case auth.RoleLabTechnician:
		out = s.lab(ctx)
	case auth.RolePatient:
		out, err = s.patient(ctx, caller)
	default:
		return nil, httpx.Forbidden("insufficient role")
	}
	if err != nil {
		return nil, err
	}
	return &Dashboard{Role: caller.Role, GeneratedAt: s.now().UTC(), Sections: out}, nil
}

func (s *Service) admin(ctx context.Context) *AdminSections {
	var d AdminSections
	from, to := s.today()
	sections.Collect(ctx,
		sections.Into(&d.UsersByRole, "admin.users_by_role", s.repo.UsersByRole),
		sections.Into(&d.AppointmentsToday, "admin.appointments_today", func(ctx context.Context) (int, error) {
			return s.repo.CountAppointments(ctx, from, to)
		}),
		sections.Into(&d.PendingLabTests, "admin.pending_lab_tests", s.repo.CountOpenLabTests),
		sections.Into(&d.LowStock, "admin.low_stock", func(ctx context.Context) ([]StockItem, error) {
			return s.repo.LowStock(ctx, listLimit)
		}),
		sections.Into(&d.RecentUsers, "admin.recent_users", func(ctx context.Context) ([]UserItem, error) {
			return s.repo.RecentUsers(ctx, listLimit)
		}),
	)
	return &d
}

func (s *Service) doctor(ctx context.Context, caller *auth.Caller) (*DoctorSections, error) {
	doctorID, err := directory.OwnDoctorID(ctx, s.dir, caller)
	if err != nil {
		return nil, err
	}
	var d DoctorSections
	from, to := s.today()
	sections.Collect(ctx,
		sections.Into(&d.TodayAppointments, "doctor.today_appointments", func(ctx context.Context) ([]AppointmentItem, error) {
			return s.repo.Appointments(ctx, AppointmentQuery{DoctorID: &doctorID, From: from, To: to, Limit: 50})
		}),
		sections.Into(&d.PatientCount, "doctor.patient_count", func(ctx context.Context) (int, error) {
			return s.repo.CountDoctorPatients(ctx, doctorID)
		}),
		sections.Into(&d.PendingLabOrders, "doctor.pending_lab_orders", func(ctx context.Context) ([]LabTestItem, error) {
			return s.repo.LabTests(ctx, LabQuery{DoctorID: &doctorID, OpenOnly: true, Limit: listLimit})
		}),
		s.unread(&d.Unread, "doctor.unread", caller.UserID),
	)
	return &d, nil
}

func (s *Service) nurse(ctx context.Context) *NurseSections {
	var d NurseSections
	from, to := s.today()
	sections.Collect(ctx,
		sections.Into(&d.TodayAppointments, "nurse.today_appointments", func(ctx context.Context) ([]AppointmentItem, error) {
			return s.repo.Appointments(ctx, AppointmentQuery{From: from, To: to, Limit: 50})
		}),
		sections.Into(&d.RecentPatients, "nurse.recent_patients", func(ctx context.Context) ([]PatientItem, error) {
			return s.repo.RecentPatients(ctx, listLimit)
		}),
	)
	return &d
}

func (s *Service) pharmacist(ctx context.Context) *PharmacistSections {
	var d PharmacistSections
	sections.Collect(ctx,
		sections.Into(&d.ActivePrescriptions, "pharmacist.active_prescriptions", func(ctx context.Context) ([]PrescriptionItem, error) {
			return s.repo.ActivePrescriptions(ctx, nil, 20)
		}),
		sections.Into(&d.LowStock, "pharmacist.low_stock", func(ctx context.Context) ([]StockItem, error) {
			return s.repo.LowStock(ctx, listLimit)
		}),
	)
	return &d
}

func (s *Service) lab(ctx context.Context) *LabSections {
	var d LabSections
	sections.Collect(ctx,
		sections.Into(&d.ByStatus, "lab.by_status", s.repo.LabTestsByStatus),
		sections.Into(&d.Queue, "lab.queue", func(ctx context.Context) ([]LabTestItem, error) {
			return s.repo.LabTests(ctx, LabQuery{OpenOnly: true, Limit: 20})
		}),
	)
	return &d
}

func (s *Service) patient(ctx context.Context, caller *auth.Caller) (*PatientSections, error) {
	patientID, err := directory.OwnPatientID(ctx, s.dir, caller)
	if err != nil {
		return nil, err
	}
	var d PatientSections
	now := s.now().UTC()
	sections.Collect(ctx,
		sections.Into(&d.UpcomingAppointments, "patient.upcoming_appointments", func(ctx context.Context) ([]AppointmentItem, error) {
			return s.repo.Appointments(ctx, AppointmentQuery{PatientID: &patientID, From: now, Limit: listLimit})
		}),
		sections.Into(&d.ActivePrescriptions, "patient.active_prescriptions", func(ctx context.Context) ([]PrescriptionItem, error) {
			return s.repo.ActivePrescriptions(ctx, &patientID, listLimit)
		}),
		sections.Into(&d.RecentLabTests, "patient.recent_lab_tests", func(ctx context.Context) ([]LabTestItem, error) {
			return s.repo.LabTests(ctx, LabQuery{PatientID: &patientID, Limit: 5})
		}),
		s.unread(&d.Unread, "patient.unread", caller.UserID),
	)
	return &d, nil
}

func (s *Service) unread(dst *sections.Result[int], name string, userID uuid.UUID) func(context.Context) {
	return sections.Into(dst, name, func(ctx context.Context) (int, error) {
		return s.repo.UnreadNotifications(ctx, userID)
	})
}
