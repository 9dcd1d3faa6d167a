package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/domain/directory"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/sections"
	"github.com/carepoint/portal/pkg/pagination"
)

// profileSectionLimit caps each related list in the aggregated profile.
const profileSectionLimit = 10

type Service struct {
	repo Repository
	dir  directory.Resolver
}

func NewService(repo Repository, dir directory.Resolver) *Service {
	return &Service{repo: repo, dir: dir}
}

// List returns every patient to admins and nurses, and only patients under
// their care to doctors.
func (s *Service) List(ctx context.Context, caller *auth.Caller, search string, p pagination.Params) ([]*Patient, int, error) {
	f := Filter{Search: search}
	switch {
	case caller.Is(auth.RoleAdmin, auth.RoleNurse):
	case caller.Is(auth.RoleDoctor):
		doctorID, err := directory.OwnDoctorID(ctx, s.dir, caller)
		if err != nil {
			return nil, 0, err
		}
		f.DoctorID = &doctorID
	default:
		return nil, 0, httpx.Forbidden("insufficient role")
	}
	return s.repo.List(ctx, f, p)
}

// Profile returns the aggregated view of one patient. Doctors need a care
// relationship; the check runs after the patient is known to exist.
func (s *Service) Profile(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Profile, error) {
	pt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case caller.Is(auth.RoleAdmin, auth.RoleNurse):
	case caller.Is(auth.RoleDoctor):
		doctorID, err := directory.OwnDoctorID(ctx, s.dir, caller)
		if err != nil {
			return nil, err
		}
		if err := directory.RequireCare(ctx, s.dir, doctorID, pt.ID); err != nil {
			return nil, err
		}
	case caller.Is(auth.RolePatient):
		own, err := directory.OwnPatientID(ctx, s.dir, caller)
		if err != nil {
			return nil, err
		}
		if own != pt.ID {
			return nil, httpx.Forbidden("not your record")
		}
	default:
		return nil, httpx.Forbidden("insufficient role")
	}
	return s.aggregate(ctx, pt), nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	pt, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("patient not found")
	}
	return pt, err
}

func (s *Service) aggregate(ctx context.Context, pt *Patient) *Profile {
	prof := &Profile{Patient: pt}
	sections.Collect(ctx,
		sections.Into(&prof.Appointments, "patient.appointments", func(ctx context.Context) ([]AppointmentSummary, error) {
			return s.repo.RecentAppointments(ctx, pt.ID, profileSectionLimit)
		}),
		sections.Into(&prof.Prescriptions, "patient.prescriptions", func(ctx context.Context) ([]PrescriptionSummary, error) {
			return s.repo.Prescriptions(ctx, pt.ID, profileSectionLimit)
		}),
		sections.Into(&prof.LabTests, "patient.lab_tests", func(ctx context.Context) ([]LabTestSummary, error) {
			return s.repo.LabTests(ctx, pt.ID, profileSectionLimit)
		}),
		sections.Into(&prof.Documents, "patient.documents", func(ctx context.Context) ([]DocumentSummary, error) {
			return s.repo.Documents(ctx, pt.ID, profileSectionLimit)
		}),
	)
	return prof
}

// Me returns the caller's own aggregated profile.
func (s *Service) Me(ctx context.Context, caller *auth.Caller) (*Profile, error) {
	id, err := directory.OwnPatientID(ctx, s.dir, caller)
	if err != nil {
		return nil, err
	}
	pt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, pt), nil
}

func (s *Service) UpdateMe(ctx context.Context, caller *auth.Caller, req UpdateRequest) (*Patient, error) {
	id, err := directory.OwnPatientID(ctx, s.dir, caller)
	if err != nil {
		return nil, err
	}
	pt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, httpx.BadRequest("date_of_birth must be YYYY-MM-DD")
		}
		if dob.After(time.Now()) {
			return nil, httpx.BadRequest("date_of_birth cannot be in the future")
		}
		pt.DateOfBirth = &dob
	}
	apply := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	apply(&pt.Phone, req.Phone)
	apply(&pt.Gender, req.Gender)
	apply(&pt.BloodType, req.BloodType)
	apply(&pt.Address, req.Address)
	apply(&pt.EmergencyContactName, req.EmergencyContactName)
	apply(&pt.EmergencyContactPhone, req.EmergencyContactPhone)
	apply(&pt.Allergies, req.Allergies)
	apply(&pt.MedicalHistory, req.MedicalHistory)
	apply(&pt.InsuranceProvider, req.InsuranceProvider)
	apply(&pt.InsuranceNumber, req.InsuranceNumber)

	if err := s.repo.Update(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}
