package doctor

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type doctorRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &doctorRepoPG{q: q}
}

const doctorCols = `d.id, d.user_id, u.first_name, u.last_name, u.email, u.phone,
	d.specialization, d.license_number, d.department, d.years_of_experience,
	d.consultation_fee, d.bio, d.is_available, d.created_at, d.updated_at`

const doctorFrom = "doctors d JOIN users u ON u.id = d.user_id"

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.FirstName, &d.LastName, &d.Email, &d.Phone,
		&d.Specialization, &d.LicenseNumber, &d.Department, &d.YearsOfExperience,
		&d.ConsultationFee, &d.Bio, &d.IsAvailable, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.q.QueryRow(ctx, `SELECT `+doctorCols+` FROM `+doctorFrom+` WHERE d.id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return d, nil
}

func (r *doctorRepoPG) List(ctx context.Context, f Filter, p pagination.Params) ([]*Doctor, int, error) {
	// Deactivated accounts are hidden from the directory.
	where := sq.And{sq.Eq{"u.is_active": true}}
	if f.Specialization != "" {
		where = append(where, sq.ILike{"d.specialization": db.EscapeLike(f.Specialization)})
	}
	if f.Available != nil {
		where = append(where, sq.Eq{"d.is_available": *f.Available})
	}
	if f.Search != "" {
		pattern := db.ContainsPattern(f.Search)
		where = append(where, sq.Or{
			sq.ILike{"u.first_name": pattern},
			sq.ILike{"u.last_name": pattern},
			sq.ILike{"d.specialization": pattern},
			sq.ILike{"d.department": pattern},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From(doctorFrom).Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := p.Apply(psql.Select(doctorCols).From(doctorFrom).
		Where(where).OrderBy("u.last_name", "u.first_name")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	err := r.q.QueryRow(ctx, `
		UPDATE doctors SET specialization = $2, department = $3, years_of_experience = $4,
			consultation_fee = $5, bio = $6, is_available = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.Specialization, d.Department, d.YearsOfExperience,
		d.ConsultationFee, d.Bio, d.IsAvailable,
	).Scan(&d.UpdatedAt)
	return db.Classify(err)
}

func (r *doctorRepoPG) Patients(ctx context.Context, doctorID uuid.UUID, p pagination.Params) ([]PatientSummary, int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(DISTINCT patient_id) FROM appointments
		WHERE doctor_id = $1 AND status <> 'cancelled'`, doctorID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.Query(ctx, `
		SELECT pt.id, u.first_name, u.last_name, u.email, pt.date_of_birth,
		       MAX(a.appointment_date), COUNT(a.id)
		FROM appointments a
		JOIN patients pt ON pt.id = a.patient_id
		JOIN users u ON u.id = pt.user_id
		WHERE a.doctor_id = $1 AND a.status <> 'cancelled'
		GROUP BY pt.id, u.first_name, u.last_name, u.email, pt.date_of_birth
		ORDER BY MAX(a.appointment_date) DESC
		LIMIT $2 OFFSET $3`, doctorID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PatientSummary, error) {
		var s PatientSummary
		err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.DateOfBirth, &s.LastAppointment, &s.Appointments)
		return s, err
	})
	return items, total, err
}
