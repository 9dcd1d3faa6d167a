package prescription

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type prescriptionRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &prescriptionRepoPG{q: q}
}

const prescriptionCols = `rx.id, rx.patient_id, rx.doctor_id,
	pu.first_name || ' ' || pu.last_name, du.first_name || ' ' || du.last_name,
	rx.appointment_id, rx.medication_name, rx.dosage, rx.frequency, rx.duration,
	rx.quantity, rx.refills, rx.instructions, rx.status, rx.filled_by, rx.filled_at,
	rx.created_at, rx.updated_at`

const prescriptionFrom = `prescriptions rx
	JOIN patients p ON p.id = rx.patient_id
	JOIN users pu ON pu.id = p.user_id
	JOIN doctors d ON d.id = rx.doctor_id
	JOIN users du ON du.id = d.user_id`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var rx Prescription
	var status string
	err := row.Scan(&rx.ID, &rx.PatientID, &rx.DoctorID, &rx.PatientName, &rx.DoctorName,
		&rx.AppointmentID, &rx.MedicationName, &rx.Dosage, &rx.Frequency, &rx.Duration,
		&rx.Quantity, &rx.Refills, &rx.Instructions, &status, &rx.FilledBy, &rx.FilledAt,
		&rx.CreatedAt, &rx.UpdatedAt)
	rx.Status = Status(status)
	return &rx, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, rx *Prescription) error {
	rx.ID = uuid.New()
	err := r.q.QueryRow(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, appointment_id, medication_name,
			dosage, frequency, duration, quantity, refills, instructions, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		rx.ID, rx.PatientID, rx.DoctorID, rx.AppointmentID, rx.MedicationName,
		rx.Dosage, rx.Frequency, rx.Duration, rx.Quantity, rx.Refills, rx.Instructions, string(rx.Status),
	).Scan(&rx.CreatedAt, &rx.UpdatedAt)
	return db.Classify(err)
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	rx, err := scanPrescription(r.q.QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM `+prescriptionFrom+` WHERE rx.id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return rx, nil
}

func (r *prescriptionRepoPG) List(ctx context.Context, f Filter, p pagination.Params) ([]*Prescription, int, error) {
	where := sq.And{}
	if f.PatientID != nil {
		where = append(where, sq.Eq{"rx.patient_id": *f.PatientID})
	}
	if f.DoctorID != nil {
		where = append(where, sq.Eq{"rx.doctor_id": *f.DoctorID})
	}
	if f.Status != nil {
		where = append(where, sq.Eq{"rx.status": string(*f.Status)})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("prescriptions rx").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := p.Apply(psql.Select(prescriptionCols).From(prescriptionFrom).
		Where(where).OrderBy("rx.created_at DESC")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		rx, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rx)
	}
	return out, total, rows.Err()
}

func (r *prescriptionRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, filledBy *uuid.UUID) (*Prescription, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE prescriptions SET status = $3,
			filled_by = CASE WHEN $3 = 'filled' THEN $4 ELSE filled_by END,
			filled_at = CASE WHEN $3 = 'filled' THEN NOW() ELSE filled_at END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), filledBy)
	if err := db.RequireAffected(tag, err); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
