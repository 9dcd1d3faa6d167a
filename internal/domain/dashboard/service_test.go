package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carepoint/portal/internal/domain/directory/directorytest"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/sections"
)

var fixedNow = time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

type fixture struct {
	svc  *Service
	repo *mockRepo
	dir  *directorytest.Resolver
}

func newFixture() *fixture {
	f := &fixture{repo: newMockRepo(), dir: directorytest.New()}
	f.svc = NewService(f.repo, f.dir)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func statusOf(err error) int {
	var he *httpx.Error
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

func TestService_Admin(t *testing.T) {
	f := newFixture()
	f.repo.appointments = []AppointmentItem{
		{ID: uuid.New(), AppointmentDate: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), AppointmentDate: time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)},
		{ID: uuid.New(), AppointmentDate: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)},
	}

	d, err := f.svc.Get(context.Background(), &auth.Caller{UserID: uuid.New(), Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := d.Sections.(*AdminSections)
	if !ok {
		t.Fatalf("expected admin sections, got %T", d.Sections)
	}
	if s.AppointmentsToday.Value != 2 {
		t.Errorf("expected 2 appointments in the UTC day, got %d", s.AppointmentsToday.Value)
	}
	if s.UsersByRole.Value["patient"] != 12 || s.PendingLabTests.Value != 4 {
		t.Errorf("unexpected counts %+v %+v", s.UsersByRole, s.PendingLabTests)
	}
	if len(s.LowStock.Value) != 1 || len(s.RecentUsers.Value) != 1 {
		t.Errorf("expected list sections to be filled")
	}
}

func TestService_SectionDegradesAlone(t *testing.T) {
	f := newFixture()
	f.repo.fail["low_stock"] = &pgconn.PgError{Code: "42P01"}
	f.repo.fail["recent_users"] = errors.New("connection reset")

	d, err := f.svc.Get(context.Background(), &auth.Caller{UserID: uuid.New(), Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("a failing section must not fail the dashboard: %v", err)
	}
	s := d.Sections.(*AdminSections)
	if !s.LowStock.Degraded || s.LowStock.Reason != sections.ReasonMissingTable || s.LowStock.Value == nil || len(s.LowStock.Value) != 0 {
		t.Errorf("expected low_stock degraded as missing_table, got %+v", s.LowStock)
	}
	if !s.RecentUsers.Degraded || s.RecentUsers.Reason != sections.ReasonQueryError {
		t.Errorf("expected recent_users degraded as query_error, got %+v", s.RecentUsers)
	}
	if s.UsersByRole.Degraded || s.PendingLabTests.Degraded {
		t.Error("healthy sections must not degrade")
	}
}

func TestService_Doctor(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	doctorID := f.dir.AddDoctor(userID, "Greg House")
	f.repo.patients[doctorID] = 7
	f.repo.unread[userID] = 3

	d, err := f.svc.Get(context.Background(), &auth.Caller{UserID: userID, Role: auth.RoleDoctor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := d.Sections.(*DoctorSections)
	if s.PatientCount.Value != 7 || s.Unread.Value != 3 {
		t.Errorf("unexpected counts: patients=%d unread=%d", s.PatientCount.Value, s.Unread.Value)
	}

	if len(f.repo.apptQs) != 1 {
		t.Fatalf("expected one appointment query, got %d", len(f.repo.apptQs))
	}
	q := f.repo.apptQs[0]
	if q.DoctorID == nil || *q.DoctorID != doctorID {
		t.Error("expected appointments scoped to the doctor")
	}
	if !q.From.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) || !q.To.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected the UTC day, got %v..%v", q.From, q.To)
	}
	if len(f.repo.labQs) != 1 || !f.repo.labQs[0].OpenOnly || *f.repo.labQs[0].DoctorID != doctorID {
		t.Errorf("expected open lab orders for the doctor, got %+v", f.repo.labQs)
	}
}

func TestService_DoctorWithoutProfile(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), &auth.Caller{UserID: uuid.New(), Role: auth.RoleDoctor})
	if statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestService_Patient(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	patientID := f.dir.AddPatient(userID, "Ada Lovelace")

	d, err := f.svc.Get(context.Background(), &auth.Caller{UserID: userID, Role: auth.RolePatient})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := d.Sections.(*PatientSections); !ok {
		t.Fatalf("expected patient sections, got %T", d.Sections)
	}

	q := f.repo.apptQs[0]
	if q.PatientID == nil || *q.PatientID != patientID || !q.To.IsZero() || !q.From.Equal(fixedNow) {
		t.Errorf("expected open-ended upcoming query for the patient, got %+v", q)
	}
	if len(f.repo.rxFilter) != 1 || f.repo.rxFilter[0] == nil || *f.repo.rxFilter[0] != patientID {
		t.Error("expected prescriptions scoped to the patient")
	}
	if f.repo.labQs[0].PatientID == nil || f.repo.labQs[0].OpenOnly {
		t.Errorf("expected all recent lab tests for the patient, got %+v", f.repo.labQs[0])
	}
}

func TestService_StaffRoles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.svc.Get(ctx, &auth.Caller{UserID: uuid.New(), Role: auth.RolePharmacist})
	if err != nil {
		t.Fatal(err)
	}
	if s := d.Sections.(*PharmacistSections); len(s.ActivePrescriptions.Value) != 1 {
		t.Errorf("unexpected pharmacist sections %+v", s)
	}
	if f.repo.rxFilter[0] != nil {
		t.Error("pharmacist queue must not be scoped to a patient")
	}

	d, err = f.svc.Get(ctx, &auth.Caller{UserID: uuid.New(), Role: auth.RoleLabTechnician})
	if err != nil {
		t.Fatal(err)
	}
	if s := d.Sections.(*LabSections); s.ByStatus.Value["completed"] != 9 || len(s.Queue.Value) != 1 {
		t.Errorf("unexpected lab sections %+v", s)
	}

	d, err = f.svc.Get(ctx, &auth.Caller{UserID: uuid.New(), Role: auth.RoleNurse})
	if err != nil {
		t.Fatal(err)
	}
	if s := d.Sections.(*NurseSections); len(s.RecentPatients.Value) != 1 {
		t.Errorf("unexpected nurse sections %+v", s)
	}
	if d.Role != auth.RoleNurse || !d.GeneratedAt.Equal(fixedNow) {
		t.Errorf("unexpected header %+v", d)
	}
}

func TestService_UnknownRole(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), &auth.Caller{UserID: uuid.New(), Role: auth.Role("janitor")})
	if statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}
