package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/domain/directory"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/metrics"
	notify "github.com/carepoint/portal/internal/platform/notification"
	"github.com/carepoint/portal/pkg/pagination"
)

const (
	defaultDuration = 30
	defaultType     = "consultation"
	dateLayout      = "Jan 2, 2006 15:04"
)

type Service struct {
	repo   Repository
	dir    directory.Resolver
	notify notify.Emitter
	now    func() time.Time
}

func NewService(repo Repository, dir directory.Resolver, emitter notify.Emitter) *Service {
	return &Service{repo: repo, dir: dir, notify: emitter, now: time.Now}
}

// scope narrows a list to what the caller may see.
func (s *Service) scope(ctx context.Context, caller *auth.Caller, f *Filter) error {
	switch {
	case caller.Is(auth.RoleAdmin, auth.RoleNurse):
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

func (s *Service) List(ctx context.Context, caller *auth.Caller, f Filter, p pagination.Params) ([]*Appointment, int, error) {
	if err := s.scope(ctx, caller, &f); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("appointment not found")
	}
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(ctx, caller, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) checkVisible(ctx context.Context, caller *auth.Caller, a *Appointment) error {
	var f Filter
	if err := s.scope(ctx, caller, &f); err != nil {
		return err
	}
	if f.PatientID != nil && *f.PatientID != a.PatientID {
		return httpx.Forbidden("not your appointment")
	}
	if f.DoctorID != nil && *f.DoctorID != a.DoctorID {
		return httpx.Forbidden("not your appointment")
	}
	return nil
}

// Book creates a scheduled appointment. Patients book for themselves; staff
// must name the patient. A taken slot is a 409 whether the pre-check or the
// unique index catches it.
func (s *Service) Book(ctx context.Context, caller *auth.Caller, req CreateRequest) (*Appointment, error) {
	patientID, err := s.bookingPatient(ctx, caller, req.PatientID)
	if err != nil {
		return nil, err
	}

	if !req.AppointmentDate.After(s.now()) {
		return nil, httpx.BadRequest("appointment_date must be in the future")
	}

	available, err := s.repo.DoctorAvailable(ctx, req.DoctorID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("doctor not found")
	}
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, httpx.BadRequest("doctor is not accepting appointments")
	}

	at := req.AppointmentDate.UTC()
	taken, err := s.repo.SlotTaken(ctx, req.DoctorID, at)
	if err != nil {
		return nil, err
	}
	if taken {
		metrics.BookingConflictsTotal.Inc()
		return nil, httpx.Conflict("the doctor already has an appointment at this time")
	}

	a := &Appointment{
		PatientID:       patientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: at,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Status:          StatusScheduled,
		Reason:          req.Reason,
		CreatedBy:       caller.UserID,
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = defaultDuration
	}
	if a.Type == "" {
		a.Type = defaultType
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, db.ErrConflict) {
			metrics.BookingConflictsTotal.Inc()
			return nil, httpx.Conflict("the doctor already has an appointment at this time")
		}
		return nil, err
	}

	s.notifyBooked(ctx, a)
	return a, nil
}

func (s *Service) bookingPatient(ctx context.Context, caller *auth.Caller, requested *uuid.UUID) (uuid.UUID, error) {
	if caller.Is(auth.RolePatient) {
		own, err := directory.OwnPatientID(ctx, s.dir, caller)
		if err != nil {
			return uuid.Nil, err
		}
		if requested != nil && *requested != own {
			return uuid.Nil, httpx.Forbidden("patients can only book for themselves")
		}
		return own, nil
	}
	if !caller.Is(auth.RoleAdmin, auth.RoleNurse) {
		return uuid.Nil, httpx.Forbidden("insufficient role")
	}
	if requested == nil || *requested == uuid.Nil {
		return uuid.Nil, httpx.BadRequest("patient_id is required")
	}
	if _, err := s.dir.PatientContact(ctx, *requested); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return uuid.Nil, httpx.NotFound("patient not found")
		}
		return uuid.Nil, err
	}
	return *requested, nil
}

// UpdateStatus applies a transition. Patients may only cancel their own
// appointments; doctors may only touch their own.
func (s *Service) UpdateStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, req StatusRequest) (*Appointment, error) {
	a, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if caller.Is(auth.RolePatient) && req.Status != StatusCancelled {
		return nil, httpx.Forbidden("patients can only cancel appointments")
	}
	if !CanTransition(a.Status, req.Status) {
		return nil, httpx.BadRequest(fmt.Sprintf("cannot change appointment from %s to %s", a.Status, req.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, a.ID, a.Status, req.Status, req.Notes)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.Conflict("appointment was changed by someone else, reload and retry")
	}
	if err != nil {
		return nil, err
	}

	if req.Status == StatusConfirmed || req.Status == StatusCancelled {
		s.notifyStatus(ctx, updated)
	}
	return updated, nil
}

func (s *Service) notifyBooked(ctx context.Context, a *Appointment) {
	doctor, err := s.dir.DoctorContact(ctx, a.DoctorID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("resolve doctor for notification")
		return
	}
	patient, err := s.dir.PatientContact(ctx, a.PatientID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("resolve patient name for notification")
	}
	s.notify.Emit(ctx, notify.Notice{
		UserID:   doctor.UserID,
		Template: notify.TemplateAppointmentBooked,
		Data: map[string]string{
			"patient_name": patient.Name,
			"date":         a.AppointmentDate.Format(dateLayout),
		},
		RelatedID: &a.ID,
	})
}

func (s *Service) notifyStatus(ctx context.Context, a *Appointment) {
	patient, err := s.dir.PatientContact(ctx, a.PatientID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("resolve patient for notification")
		return
	}
	doctor, err := s.dir.DoctorContact(ctx, a.DoctorID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("resolve doctor name for notification")
	}
	s.notify.Emit(ctx, notify.Notice{
		UserID:   patient.UserID,
		Template: notify.TemplateAppointmentStatusChanged,
		Data: map[string]string{
			"doctor_name": doctor.Name,
			"date":        a.AppointmentDate.Format(dateLayout),
			"status":      string(a.Status),
		},
		RelatedID: &a.ID,
	})
}
