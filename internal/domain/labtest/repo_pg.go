package labtest

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type labTestRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &labTestRepoPG{q: q}
}

const labTestCols = `lt.id, lt.patient_id, lt.doctor_id,
	pu.first_name || ' ' || pu.last_name, du.first_name || ' ' || du.last_name,
	lt.appointment_id, lt.test_name, lt.test_type, lt.status, lt.ordered_date,
	lt.sample_collected_date, lt.completed_date, lt.results, lt.normal_range, lt.notes,
	lt.performed_by, lt.created_at, lt.updated_at`

const labTestFrom = `lab_tests lt
	JOIN patients p ON p.id = lt.patient_id
	JOIN users pu ON pu.id = p.user_id
	JOIN doctors d ON d.id = lt.doctor_id
	JOIN users du ON du.id = d.user_id`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	var status string
	err := row.Scan(&t.ID, &t.PatientID, &t.DoctorID, &t.PatientName, &t.DoctorName,
		&t.AppointmentID, &t.TestName, &t.TestType, &status, &t.OrderedDate,
		&t.SampleCollectedDate, &t.CompletedDate, &t.Results, &t.NormalRange, &t.Notes,
		&t.PerformedBy, &t.CreatedAt, &t.UpdatedAt)
	t.Status = Status(status)
	return &t, err
}

func (r *labTestRepoPG) Create(ctx context.Context, t *LabTest) error {
	t.ID = uuid.New()
	err := r.q.QueryRow(ctx, `
		INSERT INTO lab_tests (id, patient_id, doctor_id, appointment_id, test_name, test_type,
			status, normal_range, notes, ordered_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING ordered_date, created_at, updated_at`,
		t.ID, t.PatientID, t.DoctorID, t.AppointmentID, t.TestName, t.TestType,
		string(t.Status), t.NormalRange, t.Notes,
	).Scan(&t.OrderedDate, &t.CreatedAt, &t.UpdatedAt)
	return db.Classify(err)
}

func (r *labTestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	t, err := scanLabTest(r.q.QueryRow(ctx,
		`SELECT `+labTestCols+` FROM `+labTestFrom+` WHERE lt.id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return t, nil
}

func (r *labTestRepoPG) List(ctx context.Context, f Filter, p pagination.Params) ([]*LabTest, int, error) {
	where := sq.And{}
	if f.PatientID != nil {
		where = append(where, sq.Eq{"lt.patient_id": *f.PatientID})
	}
	if f.DoctorID != nil {
		where = append(where, sq.Eq{"lt.doctor_id": *f.DoctorID})
	}
	if f.Status != nil {
		where = append(where, sq.Eq{"lt.status": string(*f.Status)})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("lab_tests lt").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := p.Apply(psql.Select(labTestCols).From(labTestFrom).
		Where(where).OrderBy("lt.ordered_date DESC")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*LabTest
	for rows.Next() {
		t, err := scanLabTest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// UpdateStatus stamps sample_collected_date and completed_date only on the
// transition that reaches them.
func (r *labTestRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, tr Transition) (*LabTest, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE lab_tests SET status = $3,
			sample_collected_date = CASE WHEN $3 = 'sample_collected' THEN NOW() ELSE sample_collected_date END,
			completed_date = CASE WHEN $3 = 'completed' THEN NOW() ELSE completed_date END,
			results = COALESCE($4, results),
			notes = COALESCE($5, notes),
			performed_by = $6,
			updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, string(tr.From), string(tr.To), tr.Results, tr.Notes, tr.PerformedBy)
	if err := db.RequireAffected(tag, err); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
