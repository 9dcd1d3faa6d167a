package prescription

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
	case caller.Is(auth.RoleAdmin, auth.RoleNurse, auth.RolePharmacist):
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

// List returns the prescriptions visible to the caller. A patient_id filter
// from a patient is replaced by their own id.
func (s *Service) List(ctx context.Context, caller *auth.Caller, f Filter, p pagination.Params) ([]*Prescription, int, error) {
	if err := s.scope(ctx, caller, &f); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Prescription, error) {
	rx, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("prescription not found")
	}
	if err != nil {
		return nil, err
	}

	var f Filter
	if err := s.scope(ctx, caller, &f); err != nil {
		return nil, err
	}
	if (f.PatientID != nil && *f.PatientID != rx.PatientID) || (f.DoctorID != nil && *f.DoctorID != rx.DoctorID) {
		return nil, httpx.Forbidden("not your prescription")
	}
	return rx, nil
}

// Create writes an active prescription. The prescribing doctor must have a
// care relationship with the patient.
func (s *Service) Create(ctx context.Context, caller *auth.Caller, req CreateRequest) (*Prescription, error) {
	if !caller.Is(auth.RoleDoctor) {
		return nil, httpx.Forbidden("only doctors can prescribe")
	}
	doctorID, err := directory.OwnDoctorID(ctx, s.dir, caller)
	if err != nil {
		return nil, err
	}
	if _, err := s.dir.PatientContact(ctx, req.PatientID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, httpx.NotFound("patient not found")
		}
		return nil, err
	}
	if err := directory.RequireCare(ctx, s.dir, doctorID, req.PatientID); err != nil {
		return nil, err
	}

	rx := &Prescription{
		PatientID:      req.PatientID,
		DoctorID:       doctorID,
		AppointmentID:  req.AppointmentID,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		Duration:       req.Duration,
		Quantity:       req.Quantity,
		Refills:        req.Refills,
		Instructions:   req.Instructions,
		Status:         StatusActive,
	}
	if err := s.repo.Create(ctx, rx); err != nil {
		return nil, err
	}
	return rx, nil
}

// UpdateStatus fills, completes or cancels a prescription. Pharmacists fill
// and complete; only the prescribing doctor or an admin may cancel.
func (s *Service) UpdateStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, req StatusRequest) (*Prescription, error) {
	rx, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case StatusFilled, StatusCompleted:
		if !caller.Is(auth.RolePharmacist, auth.RoleAdmin) {
			return nil, httpx.Forbidden("only pharmacists can dispense prescriptions")
		}
	case StatusCancelled:
		// Get has already limited a doctor to their own prescriptions.
		if !caller.Is(auth.RoleDoctor, auth.RoleAdmin) {
			return nil, httpx.Forbidden("only the prescribing doctor can cancel")
		}
	default:
		return nil, httpx.BadRequest(fmt.Sprintf("cannot set prescription status to %s", req.Status))
	}
	if !CanTransition(rx.Status, req.Status) {
		return nil, httpx.BadRequest(fmt.Sprintf("cannot change prescription from %s to %s", rx.Status, req.Status))
	}

	var filledBy *uuid.UUID
	if req.Status == StatusFilled {
		filledBy = &caller.UserID
	}
	updated, err := s.repo.UpdateStatus(ctx, rx.ID, rx.Status, req.Status, filledBy)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.Conflict("prescription was changed by someone else, reload and retry")
	}
	if err != nil {
		return nil, err
	}

	if updated.Status == StatusFilled {
		s.notifyFilled(ctx, updated)
	}
	return updated, nil
}

func (s *Service) notifyFilled(ctx context.Context, rx *Prescription) {
	patient, err := s.dir.PatientContact(ctx, rx.PatientID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("prescription_id", rx.ID.String()).Msg("resolve patient for notification")
		return
	}
	s.notify.Emit(ctx, notify.Notice{
		UserID:    patient.UserID,
		Template:  notify.TemplatePrescriptionFilled,
		Data:      map[string]string{"medication": rx.MedicationName},
		RelatedID: &rx.ID,
	})
}
