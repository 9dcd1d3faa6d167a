package appointment

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type appointmentRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &appointmentRepoPG{q: q}
}

const appointmentCols = `a.id, a.patient_id, a.doctor_id,
	pu.first_name || ' ' || pu.last_name, du.first_name || ' ' || du.last_name,
	a.appointment_date, a.duration_minutes, a.type, a.status, a.reason, a.notes,
	a.created_by, a.created_at, a.updated_at`

const appointmentFrom = `appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN users pu ON pu.id = p.user_id
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.PatientName, &a.DoctorName,
		&a.AppointmentDate, &a.DurationMinutes, &a.Type, &status, &a.Reason, &a.Notes,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	a.Status = Status(status)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.q.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, appointment_date, duration_minutes,
			type, status, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.DurationMinutes,
		a.Type, string(a.Status), a.Reason, a.CreatedBy,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return db.Classify(err)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.q.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM `+appointmentFrom+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return a, nil
}

func (r *appointmentRepoPG) List(ctx context.Context, f Filter, p pagination.Params) ([]*Appointment, int, error) {
	where := sq.And{}
	if f.PatientID != nil {
		where = append(where, sq.Eq{"a.patient_id": *f.PatientID})
	}
	if f.DoctorID != nil {
		where = append(where, sq.Eq{"a.doctor_id": *f.DoctorID})
	}
	if f.Status != nil {
		where = append(where, sq.Eq{"a.status": string(*f.Status)})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"a.appointment_date": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.Lt{"a.appointment_date": *f.To})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("appointments a").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := p.Apply(psql.Select(appointmentCols).From(appointmentFrom).
		Where(where).OrderBy("a.appointment_date DESC")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *appointmentRepoPG) SlotTaken(ctx context.Context, doctorID uuid.UUID, at time.Time) (bool, error) {
	var taken bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND appointment_date = $2
			  AND status NOT IN ('cancelled', 'completed')
		)`, doctorID, at).Scan(&taken)
	return taken, err
}

func (r *appointmentRepoPG) DoctorAvailable(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT d.is_available AND u.is_active
		FROM doctors d JOIN users u ON u.id = d.user_id
		WHERE d.id = $1`, doctorID).Scan(&ok)
	if err != nil {
		return false, db.Classify(err)
	}
	return ok, nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, notes *string) (*Appointment, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE appointments SET status = $3, notes = COALESCE($4, notes), updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), notes)
	if err := db.RequireAffected(tag, err); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
