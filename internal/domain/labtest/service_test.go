package labtest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/domain/directory/directorytest"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	notify "github.com/carepoint/portal/internal/platform/notification"
	"github.com/carepoint/portal/internal/platform/notification/notificationtest"
	"github.com/carepoint/portal/pkg/pagination"
)

type fixture struct {
	svc     *Service
	repo    *mockRepo
	dir     *directorytest.Resolver
	notices *notificationtest.Recorder
	patient *auth.Caller
	patID   uuid.UUID
	patUser uuid.UUID
	doctor  *auth.Caller
	docID   uuid.UUID
	tech    *auth.Caller
}

func newFixture() *fixture {
	f := &fixture{repo: newMockRepo(), dir: directorytest.New(), notices: &notificationtest.Recorder{}}
	f.svc = NewService(f.repo, f.dir, f.notices)

	f.patUser = uuid.New()
	f.patID = f.dir.AddPatient(f.patUser, "Ada Lovelace")
	f.patient = &auth.Caller{UserID: f.patUser, Role: auth.RolePatient}

	docUser := uuid.New()
	f.docID = f.dir.AddDoctor(docUser, "Greg House")
	f.doctor = &auth.Caller{UserID: docUser, Role: auth.RoleDoctor}
	f.dir.Link(f.docID, f.patID)

	f.tech = &auth.Caller{UserID: uuid.New(), Role: auth.RoleLabTechnician}
	return f
}

func (f *fixture) order(t *testing.T) *LabTest {
	t.Helper()
	lt, err := f.svc.Order(context.Background(), f.doctor, CreateRequest{PatientID: f.patID, TestName: "CBC"})
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	return lt
}

func (f *fixture) advance(t *testing.T, id uuid.UUID, to Status) *LabTest {
	t.Helper()
	lt, err := f.svc.UpdateStatus(context.Background(), f.tech, id, StatusRequest{Status: to})
	if err != nil {
		t.Fatalf("advance to %s: %v", to, err)
	}
	return lt
}

func statusOf(err error) int {
	var he *httpx.Error
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

func TestService_Order_NotifiesPatient(t *testing.T) {
	f := newFixture()
	lt := f.order(t)
	if lt.Status != StatusOrdered || lt.DoctorID != f.docID {
		t.Errorf("unexpected lab test %+v", lt)
	}

	notices := f.notices.Notices()
	if len(notices) != 1 || notices[0].Template != notify.TemplateLabOrderCreated || notices[0].UserID != f.patUser {
		t.Fatalf("expected an order notice to the patient, got %+v", notices)
	}
	if notices[0].Data["doctor_name"] != "Greg House" || notices[0].Data["test_name"] != "CBC" {
		t.Errorf("unexpected notice data %v", notices[0].Data)
	}
	if notices[0].RelatedID == nil || *notices[0].RelatedID != lt.ID {
		t.Error("expected related id to point at the lab test")
	}
}

func TestService_Order_RequiresCareRelationship(t *testing.T) {
	f := newFixture()
	stranger := f.dir.AddPatient(uuid.New(), "Stranger")
	_, err := f.svc.Order(context.Background(), f.doctor, CreateRequest{PatientID: stranger, TestName: "CBC"})
	if statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if len(f.notices.Notices()) != 0 || len(f.repo.data) != 0 {
		t.Error("a refused order must not write or notify")
	}
}

func TestService_Pipeline(t *testing.T) {
	f := newFixture()
	lt := f.order(t)

	collected := f.advance(t, lt.ID, StatusSampleCollected)
	if collected.SampleCollectedDate == nil || collected.CompletedDate != nil {
		t.Errorf("expected only sample_collected_date, got %+v", collected)
	}
	running := f.advance(t, lt.ID, StatusInProgress)
	if running.CompletedDate != nil {
		t.Error("completed_date set too early")
	}
	if len(f.notices.Notices()) != 1 {
		t.Error("intermediate transitions must not notify")
	}

	results := "WBC 6.1"
	done, err := f.svc.UpdateStatus(context.Background(), f.tech, lt.ID, StatusRequest{Status: StatusCompleted, Results: &results})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.CompletedDate == nil || done.Results == nil || *done.Results != results {
		t.Errorf("expected results and completed_date, got %+v", done)
	}
	if done.PerformedBy == nil || *done.PerformedBy != f.tech.UserID {
		t.Error("expected performed_by to be the technician")
	}

	templates := f.notices.Templates()
	if len(templates) != 2 || templates[1] != notify.TemplateLabResultReady {
		t.Fatalf("expected a result notice, got %v", templates)
	}
}

func TestService_UpdateStatus_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lt := f.order(t)

	if _, err := f.svc.UpdateStatus(ctx, f.doctor, lt.ID, StatusRequest{Status: StatusSampleCollected}); statusOf(err) != http.StatusForbidden {
		t.Errorf("doctor: expected 403, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.tech, lt.ID, StatusRequest{Status: StatusCompleted}); statusOf(err) != http.StatusBadRequest {
		t.Errorf("skip: expected 400, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.tech, lt.ID, StatusRequest{Status: StatusOrdered}); statusOf(err) != http.StatusBadRequest {
		t.Errorf("self: expected 400, got %v", err)
	}

	f.advance(t, lt.ID, StatusCancelled)
	if _, err := f.svc.UpdateStatus(ctx, f.tech, lt.ID, StatusRequest{Status: StatusSampleCollected}); statusOf(err) != http.StatusBadRequest {
		t.Errorf("after cancel: expected 400, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.tech, uuid.New(), StatusRequest{Status: StatusCancelled}); statusOf(err) != http.StatusNotFound {
		t.Errorf("missing: expected 404, got %v", err)
	}
}

type staleRepo struct{ *mockRepo }

func (staleRepo) UpdateStatus(context.Context, uuid.UUID, Transition) (*LabTest, error) {
	return nil, db.ErrNotFound
}

func TestService_UpdateStatus_ConcurrentChange(t *testing.T) {
	f := newFixture()
	lt := f.order(t)
	f.svc.repo = staleRepo{f.repo}

	_, err := f.svc.UpdateStatus(context.Background(), f.tech, lt.ID, StatusRequest{Status: StatusSampleCollected})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestService_Visibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lt := f.order(t)
	p := pagination.Params{Limit: 20}

	other := &auth.Caller{UserID: uuid.New(), Role: auth.RolePatient}
	f.dir.AddPatient(other.UserID, "Other")
	if _, err := f.svc.Get(ctx, other, lt.ID); statusOf(err) != http.StatusForbidden {
		t.Errorf("other patient: expected 403, got %v", err)
	}
	if _, err := f.svc.Get(ctx, f.patient, lt.ID); err != nil {
		t.Errorf("own patient: %v", err)
	}
	if _, total, _ := f.svc.List(ctx, f.tech, Filter{}, p); total != 1 {
		t.Errorf("tech: expected 1, got %d", total)
	}
	pharm := &auth.Caller{UserID: uuid.New(), Role: auth.RolePharmacist}
	if _, _, err := f.svc.List(ctx, pharm, Filter{}, p); statusOf(err) != http.StatusForbidden {
		t.Errorf("pharmacist: expected 403, got %v", err)
	}
}
