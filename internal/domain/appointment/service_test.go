package appointment

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/domain/directory/directorytest"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/metrics"
	notify "github.com/carepoint/portal/internal/platform/notification"
	"github.com/carepoint/portal/internal/platform/notification/notificationtest"
	"github.com/carepoint/portal/pkg/pagination"
)

var fixedNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	repo     *mockRepo
	dir      *directorytest.Resolver
	notices  *notificationtest.Recorder
	patient  *auth.Caller
	patID    uuid.UUID
	doctor   *auth.Caller
	docID    uuid.UUID
	docUser  uuid.UUID
	patUser  uuid.UUID
	nurse    *auth.Caller
	slot     time.Time
}

func newFixture() *fixture {
	f := &fixture{repo: newMockRepo(), dir: directorytest.New(), notices: &notificationtest.Recorder{}}
	f.svc = NewService(f.repo, f.dir, f.notices)
	f.svc.now = func() time.Time { return fixedNow }

	f.patUser = uuid.New()
	f.patID = f.dir.AddPatient(f.patUser, "Ada Lovelace")
	f.patient = &auth.Caller{UserID: f.patUser, Role: auth.RolePatient}

	f.docUser = uuid.New()
	f.docID = f.dir.AddDoctor(f.docUser, "Greg House")
	f.doctor = &auth.Caller{UserID: f.docUser, Role: auth.RoleDoctor}
	f.repo.available[f.docID] = true

	f.nurse = &auth.Caller{UserID: uuid.New(), Role: auth.RoleNurse}
	f.slot = fixedNow.Add(48 * time.Hour)
	return f
}

func (f *fixture) book(t *testing.T) *Appointment {
	t.Helper()
	a, err := f.svc.Book(context.Background(), f.patient, CreateRequest{DoctorID: f.docID, AppointmentDate: f.slot})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	return a
}

func statusOf(err error) int {
	var he *httpx.Error
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

func TestService_Book_Patient(t *testing.T) {
	f := newFixture()
	a := f.book(t)

	if a.PatientID != f.patID || a.Status != StatusScheduled {
		t.Errorf("unexpected appointment %+v", a)
	}
	if a.DurationMinutes != defaultDuration || a.Type != defaultType {
		t.Errorf("expected defaults, got %d %s", a.DurationMinutes, a.Type)
	}

	notices := f.notices.Notices()
	if len(notices) != 1 || notices[0].Template != notify.TemplateAppointmentBooked || notices[0].UserID != f.docUser {
		t.Fatalf("expected a booked notice to the doctor, got %+v", notices)
	}
	if notices[0].Data["patient_name"] != "Ada Lovelace" {
		t.Errorf("expected patient name in notice, got %v", notices[0].Data)
	}
}

func TestService_Book_PatientCannotBookForOthers(t *testing.T) {
	f := newFixture()
	other := f.dir.AddPatient(uuid.New(), "Someone")
	_, err := f.svc.Book(context.Background(), f.patient, CreateRequest{PatientID: &other, DoctorID: f.docID, AppointmentDate: f.slot})
	if statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestService_Book_StaffMustNamePatient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, f.nurse, CreateRequest{DoctorID: f.docID, AppointmentDate: f.slot}); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 without patient_id, got %v", err)
	}
	missing := uuid.New()
	if _, err := f.svc.Book(ctx, f.nurse, CreateRequest{PatientID: &missing, DoctorID: f.docID, AppointmentDate: f.slot}); statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404 for unknown patient, got %v", err)
	}
	a, err := f.svc.Book(ctx, f.nurse, CreateRequest{PatientID: &f.patID, DoctorID: f.docID, AppointmentDate: f.slot})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.CreatedBy != f.nurse.UserID {
		t.Errorf("expected created_by to be the nurse")
	}
}

func TestService_Book_DoctorChecks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, f.patient, CreateRequest{DoctorID: uuid.New(), AppointmentDate: f.slot}); statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404 for unknown doctor, got %v", err)
	}
	f.repo.available[f.docID] = false
	if _, err := f.svc.Book(ctx, f.patient, CreateRequest{DoctorID: f.docID, AppointmentDate: f.slot}); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for unavailable doctor, got %v", err)
	}
}

func TestService_Book_PastDate(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Book(context.Background(), f.patient, CreateRequest{DoctorID: f.docID, AppointmentDate: fixedNow.Add(-time.Hour)})
	if statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestService_Book_Conflict(t *testing.T) {
	f := newFixture()
	f.book(t)
	before := testutil.ToFloat64(metrics.BookingConflictsTotal)

	_, err := f.svc.Book(context.Background(), f.nurse, CreateRequest{PatientID: &f.patID, DoctorID: f.docID, AppointmentDate: f.slot})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if len(f.repo.data) != 1 {
		t.Errorf("expected no second insert, got %d rows", len(f.repo.data))
	}
	if got := testutil.ToFloat64(metrics.BookingConflictsTotal) - before; got != 1 {
		t.Errorf("expected conflict counter +1, got %v", got)
	}
	if len(f.notices.Notices()) != 1 {
		t.Error("a refused booking must not notify")
	}
}

func TestService_Book_RaceCaughtByIndex(t *testing.T) {
	f := newFixture()
	f.repo.raceOnCreate = true
	_, err := f.svc.Book(context.Background(), f.patient, CreateRequest{DoctorID: f.docID, AppointmentDate: f.slot})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409 from the index, got %v", err)
	}
}

func TestService_Book_CancelledSlotIsFree(t *testing.T) {
	f := newFixture()
	a := f.book(t)
	if _, err := f.svc.UpdateStatus(context.Background(), f.patient, a.ID, StatusRequest{Status: StatusCancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Book(context.Background(), f.patient, CreateRequest{DoctorID: f.docID, AppointmentDate: f.slot}); err != nil {
		t.Fatalf("expected the cancelled slot to be bookable, got %v", err)
	}
}

func TestService_List_Scoping(t *testing.T) {
	f := newFixture()
	f.book(t)
	otherPatient := f.dir.AddPatient(uuid.New(), "Other")
	if _, err := f.svc.Book(context.Background(), f.nurse, CreateRequest{PatientID: &otherPatient, DoctorID: f.docID, AppointmentDate: f.slot.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	p := pagination.Params{Limit: 20}

	if _, total, _ := f.svc.List(ctx, f.patient, Filter{}, p); total != 1 {
		t.Errorf("patient: expected 1, got %d", total)
	}
	if _, total, _ := f.svc.List(ctx, f.doctor, Filter{}, p); total != 2 {
		t.Errorf("doctor: expected 2, got %d", total)
	}
	if _, total, _ := f.svc.List(ctx, f.nurse, Filter{}, p); total != 2 {
		t.Errorf("nurse: expected 2, got %d", total)
	}
	otherDoctor := &auth.Caller{UserID: uuid.New(), Role: auth.RoleDoctor}
	f.dir.AddDoctor(otherDoctor.UserID, "Other Doc")
	if _, total, _ := f.svc.List(ctx, otherDoctor, Filter{}, p); total != 0 {
		t.Errorf("other doctor: expected 0, got %d", total)
	}
}

func TestService_Get_Visibility(t *testing.T) {
	f := newFixture()
	a := f.book(t)
	stranger := &auth.Caller{UserID: uuid.New(), Role: auth.RolePatient}
	f.dir.AddPatient(stranger.UserID, "Stranger")

	if _, err := f.svc.Get(context.Background(), stranger, a.ID); statusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), f.doctor, a.ID); err != nil {
		t.Errorf("doctor: unexpected error %v", err)
	}
	if _, err := f.svc.Get(context.Background(), f.nurse, uuid.New()); statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture()
	a := f.book(t)
	ctx := context.Background()

	if _, err := f.svc.UpdateStatus(ctx, f.patient, a.ID, StatusRequest{Status: StatusConfirmed}); statusOf(err) != http.StatusForbidden {
		t.Errorf("patient confirm: expected 403, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.doctor, a.ID, StatusRequest{Status: StatusCompleted}); statusOf(err) != http.StatusBadRequest {
		t.Errorf("scheduled -> completed: expected 400, got %v", err)
	}

	got, err := f.svc.UpdateStatus(ctx, f.doctor, a.ID, StatusRequest{Status: StatusConfirmed})
	if err != nil || got.Status != StatusConfirmed {
		t.Fatalf("confirm: %v, %+v", err, got)
	}
	notes := "seen"
	if _, err := f.svc.UpdateStatus(ctx, f.doctor, a.ID, StatusRequest{Status: StatusCompleted, Notes: &notes}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	want := []string{notify.TemplateAppointmentBooked, notify.TemplateAppointmentStatusChanged}
	templates := f.notices.Templates()
	if len(templates) != len(want) {
		t.Fatalf("expected notices %v, got %v", want, templates)
	}
	last := f.notices.Notices()[1]
	if last.UserID != f.patUser || last.Data["status"] != "confirmed" {
		t.Errorf("expected confirmation notice to the patient, got %+v", last)
	}
}

type staleRepo struct{ *mockRepo }

func (s staleRepo) UpdateStatus(context.Context, uuid.UUID, Status, Status, *string) (*Appointment, error) {
	return nil, db.ErrNotFound
}

func TestService_UpdateStatus_ConcurrentChange(t *testing.T) {
	f := newFixture()
	a := f.book(t)
	svc := NewService(staleRepo{f.repo}, f.dir, f.notices)

	_, err := svc.UpdateStatus(context.Background(), f.nurse, a.ID, StatusRequest{Status: StatusConfirmed})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestService_Notify_NameLookupFailureIsLogged(t *testing.T) {
	f := newFixture()
	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	f.dir.FailContact(f.patID, errors.New("directory timeout"))
	a, err := f.svc.Book(ctx, f.patient, CreateRequest{DoctorID: f.docID, AppointmentDate: f.slot})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	notices := f.notices.Notices()
	if len(notices) != 1 || notices[0].UserID != f.docUser {
		t.Fatalf("expected the doctor to be notified anyway, got %+v", notices)
	}
	if !strings.Contains(logs.String(), "resolve patient name for notification") {
		t.Errorf("expected a warning for the patient lookup, got %q", logs.String())
	}

	logs.Reset()
	f.dir.FailContact(f.patID, nil)
	f.dir.FailContact(f.docID, errors.New("directory timeout"))
	if _, err := f.svc.UpdateStatus(ctx, f.nurse, a.ID, StatusRequest{Status: StatusConfirmed}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(f.notices.Notices()) != 2 {
		t.Errorf("expected the patient to be notified anyway, got %d notices", len(f.notices.Notices()))
	}
	if !strings.Contains(logs.String(), "resolve doctor name for notification") {
		t.Errorf("expected a warning for the doctor lookup, got %q", logs.String())
	}
}
