package prescription

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

func newPGMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestRepoPG_UpdateStatus_Conditional(t *testing.T) {
	mock := newPGMock(t)
	id, by := uuid.New(), uuid.New()
	mock.ExpectExec(`UPDATE prescriptions SET status = \$3 .* WHERE id = \$1 AND status = \$2`).
		WithArgs(id, "active", "filled", &by).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := NewRepoPG(mock).UpdateStatus(context.Background(), id, StatusActive, StatusFilled, &by)
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoPG_List_Filters(t *testing.T) {
	mock := newPGMock(t)
	patientID := uuid.New()
	status := StatusActive

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM prescriptions rx WHERE \(rx.patient_id = \$1 AND rx.status = \$2\)`).
		WithArgs(patientID, "active").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM prescriptions rx .* ORDER BY rx.created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs(patientID, "active").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	items, total, err := NewRepoPG(mock).List(context.Background(),
		Filter{PatientID: &patientID, Status: &status}, pagination.Params{Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("expected empty result, got %d/%d", total, len(items))
	}
}
