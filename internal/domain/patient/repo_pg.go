package patient

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type patientRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &patientRepoPG{q: q}
}

const patientCols = `p.id, p.user_id, u.first_name, u.last_name, u.email, u.phone,
	p.date_of_birth, p.gender, p.blood_type, p.address, p.emergency_contact_name,
	p.emergency_contact_phone, p.allergies, p.medical_history, p.insurance_provider,
	p.insurance_number, p.created_at, p.updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.DateOfBirth, &p.Gender, &p.BloodType, &p.Address, &p.EmergencyContactName,
		&p.EmergencyContactPhone, &p.Allergies, &p.MedicalHistory, &p.InsuranceProvider,
		&p.InsuranceNumber, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.q.QueryRow(ctx, `
		SELECT `+patientCols+`
		FROM patients p JOIN users u ON u.id = p.user_id
		WHERE p.id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return p, nil
}

func (r *patientRepoPG) List(ctx context.Context, f Filter, pg pagination.Params) ([]*Patient, int, error) {
	where := sq.And{}
	if f.Search != "" {
		pattern := db.ContainsPattern(f.Search)
		where = append(where, sq.Or{
			sq.ILike{"u.first_name": pattern},
			sq.ILike{"u.last_name": pattern},
			sq.ILike{"u.email": pattern},
		})
	}
	if f.DoctorID != nil {
		where = append(where, sq.Expr(`EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.patient_id = p.id AND a.doctor_id = ? AND a.status <> 'cancelled')`, *f.DoctorID))
	}

	from := "patients p JOIN users u ON u.id = p.user_id"
	countSQL, countArgs, err := psql.Select("COUNT(*)").From(from).Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := pg.Apply(psql.Select(patientCols).From(from).
		Where(where).OrderBy("u.last_name", "u.first_name")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	err := r.q.QueryRow(ctx, `
		UPDATE patients SET date_of_birth = $2, gender = $3, blood_type = $4, address = $5,
			emergency_contact_name = $6, emergency_contact_phone = $7, allergies = $8,
			medical_history = $9, insurance_provider = $10, insurance_number = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.DateOfBirth, p.Gender, p.BloodType, p.Address,
		p.EmergencyContactName, p.EmergencyContactPhone, p.Allergies,
		p.MedicalHistory, p.InsuranceProvider, p.InsuranceNumber,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return db.Classify(err)
	}
	_, err = r.q.Exec(ctx, `UPDATE users SET phone = $2, updated_at = NOW() WHERE id = $1`, p.UserID, p.Phone)
	return err
}

func (r *patientRepoPG) RecentAppointments(ctx context.Context, patientID uuid.UUID, limit int) ([]AppointmentSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT a.id, u.first_name || ' ' || u.last_name, a.appointment_date, a.type, a.status
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN users u ON u.id = d.user_id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC
		LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AppointmentSummary, error) {
		var s AppointmentSummary
		err := row.Scan(&s.ID, &s.DoctorName, &s.AppointmentDate, &s.Type, &s.Status)
		return s, err
	})
}

func (r *patientRepoPG) Prescriptions(ctx context.Context, patientID uuid.UUID, limit int) ([]PrescriptionSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, medication_name, dosage, frequency, status, created_at
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (PrescriptionSummary, error) {
		var s PrescriptionSummary
		err := row.Scan(&s.ID, &s.MedicationName, &s.Dosage, &s.Frequency, &s.Status, &s.CreatedAt)
		return s, err
	})
}

func (r *patientRepoPG) LabTests(ctx context.Context, patientID uuid.UUID, limit int) ([]LabTestSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, test_name, status, ordered_date, completed_date
		FROM lab_tests
		WHERE patient_id = $1
		ORDER BY ordered_date DESC
		LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (LabTestSummary, error) {
		var s LabTestSummary
		err := row.Scan(&s.ID, &s.TestName, &s.Status, &s.OrderedDate, &s.CompletedDate)
		return s, err
	})
}

func (r *patientRepoPG) Documents(ctx context.Context, patientID uuid.UUID, limit int) ([]DocumentSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, file_name, category, content_type, size_bytes, created_at
		FROM patient_documents
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DocumentSummary, error) {
		var s DocumentSummary
		err := row.Scan(&s.ID, &s.FileName, &s.Category, &s.ContentType, &s.SizeBytes, &s.CreatedAt)
		return s, err
	})
}
