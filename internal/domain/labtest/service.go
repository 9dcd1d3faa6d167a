package labtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/domain/directory"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	notify "github.com/carepoint/portal/internal/platform/notification"
	"github.com/carepoint/portal/pkg/pagination"
)

type Service struct {
	repo   Repository
	dir    directory.Resolver
	notify notify.Emitter
}

func NewService(repo Repository, dir directory.Resolver, emitter notify.Emitter) *Service {
	return &Service{repo: repo, dir: dir, notify: emitter}
}

func (s *Service) scope(ctx context.Context, caller *auth.Caller, f *Filter) error {
	switch {
	case caller.Is(auth.RoleAdmin, auth.RoleNurse, auth.RoleLabTechnician):
		return nil
	case caller.Is(auth.RolePatient):
		id, err := directory.OwnPatientID(ctx, s.dir, caller)
		if err != nil {
			return err
		}
		f.PatientID = &id
	case caller.Is(auth.RoleDoctor):
		id, err := directory.OwnDoctorID(ctx, s.dir, caller)
		if err != nil {
			return err
		}
		f.DoctorID = &id
	default:
		return httpx.Forbidden("insufficient role")
	}
	return nil
}

func (s *Service) List(ctx context.Context, caller *auth.Caller, f Filter, p pagination.Params) ([]*LabTest, int, error) {
	if err := s.scope(ctx, caller, &f); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*LabTest, error) {
	t, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("lab test not found")
	}
	if err != nil {
		return nil, err
	}

	var f Filter
	if err := s.scope(ctx, caller, &f); err != nil {
		return nil, err
	}
	if (f.PatientID != nil && *f.PatientID != t.PatientID) || (f.DoctorID != nil && *f.DoctorID != t.DoctorID) {
		return nil, httpx.Forbidden("not your lab test")
	}
	return t, nil
}

// Order creates a lab test for a patient under the calling doctor's care and
// tells the patient about it.
func (s *Service) Order(ctx context.Context, caller *auth.Caller, req CreateRequest) (*LabTest, error) {
	if !caller.Is(auth.RoleDoctor) {
		return nil, httpx.Forbidden("only doctors can order lab tests")
	}
	doctorID, err := directory.OwnDoctorID(ctx, s.dir, caller)
	if err != nil {
		return nil, err
	}
	patient, err := s.dir.PatientContact(ctx, req.PatientID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("patient not found")
	}
	if err != nil {
		return nil, err
	}
	if err := directory.RequireCare(ctx, s.dir, doctorID, req.PatientID); err != nil {
		return nil, err
	}

	t := &LabTest{
		PatientID:     req.PatientID,
		DoctorID:      doctorID,
		AppointmentID: req.AppointmentID,
		TestName:      req.TestName,
		TestType:      req.TestType,
		Status:        StatusOrdered,
		NormalRange:   req.NormalRange,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	doctor, err := s.dir.DoctorContact(ctx, doctorID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("lab_test_id", t.ID.String()).Msg("resolve doctor for notification")
	}
	s.notify.Emit(ctx, notify.Notice{
		UserID:    patient.UserID,
		Template:  notify.TemplateLabOrderCreated,
		Data:      map[string]string{"doctor_name": doctor.Name, "test_name": t.TestName},
		RelatedID: &t.ID,
	})
	return t, nil
}

// UpdateStatus moves a test through the lab pipeline. The write is
// conditional on the status read here, so two technicians racing on the
// same test get one success and one 409.
func (s *Service) UpdateStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, req StatusRequest) (*LabTest, error) {
	if !caller.Is(auth.RoleLabTechnician, auth.RoleAdmin) {
		return nil, httpx.Forbidden("only lab technicians can update lab tests")
	}
	t, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, req.Status) {
		return nil, httpx.BadRequest(fmt.Sprintf("cannot change lab test from %s to %s", t.Status, req.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, t.ID, Transition{
		From:        t.Status,
		To:          req.Status,
		Results:     req.Results,
		Notes:       req.Notes,
		PerformedBy: caller.UserID,
	})
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.Conflict("lab test was changed by someone else, reload and retry")
	}
	if err != nil {
		return nil, err
	}

	if updated.Status == StatusCompleted {
		s.notifyResult(ctx, updated)
	}
	return updated, nil
}

func (s *Service) notifyResult(ctx context.Context, t *LabTest) {
	patient, err := s.dir.PatientContact(ctx, t.PatientID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("lab_test_id", t.ID.String()).Msg("resolve patient for notification")
		return
	}
	s.notify.Emit(ctx, notify.Notice{
		UserID:    patient.UserID,
		Template:  notify.TemplateLabResultReady,
		Data:      map[string]string{"test_name": t.TestName},
		RelatedID: &t.ID,
	})
}
