package dashboard

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type dashboardRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &dashboardRepoPG{q: q}
}

func (r *dashboardRepoPG) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *dashboardRepoPG) grouped(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

func (r *dashboardRepoPG) UsersByRole(ctx context.Context) (map[string]int, error) {
	return r.grouped(ctx, `SELECT role, COUNT(*) FROM users WHERE is_active GROUP BY role`)
}

func (r *dashboardRepoPG) RecentUsers(ctx context.Context, limit int) ([]UserItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, first_name || ' ' || last_name, email, role, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (UserItem, error) {
		var u UserItem
		err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
		return u, err
	})
}

func (r *dashboardRepoPG) CountAppointments(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE appointment_date >= $1 AND appointment_date < $2 AND status <> 'cancelled'`, from, to)
}

func (r *dashboardRepoPG) Appointments(ctx context.Context, q AppointmentQuery) ([]AppointmentItem, error) {
	where := sq.And{sq.NotEq{"a.status": "cancelled"}, sq.GtOrEq{"a.appointment_date": q.From}}
	if !q.To.IsZero() {
		where = append(where, sq.Lt{"a.appointment_date": q.To})
	}
	if q.DoctorID != nil {
		where = append(where, sq.Eq{"a.doctor_id": *q.DoctorID})
	}
	if q.PatientID != nil {
		where = append(where, sq.Eq{"a.patient_id": *q.PatientID})
	}

	query, args, err := psql.Select(
		"a.id", "pu.first_name || ' ' || pu.last_name", "du.first_name || ' ' || du.last_name",
		"a.appointment_date", "a.type", "a.status",
	).From(`appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN users pu ON pu.id = p.user_id
		JOIN doctors d ON d.id = a.doctor_id
		JOIN users du ON du.id = d.user_id`).
		Where(where).OrderBy("a.appointment_date").Limit(uint64(q.Limit)).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AppointmentItem, error) {
		var a AppointmentItem
		err := row.Scan(&a.ID, &a.PatientName, &a.DoctorName, &a.AppointmentDate, &a.Type, &a.Status)
		return a, err
	})
}

func (r *dashboardRepoPG) CountOpenLabTests(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM lab_tests WHERE status IN ('ordered', 'sample_collected', 'in_progress')`)
}

func (r *dashboardRepoPG) LabTestsByStatus(ctx context.Context) (map[string]int, error) {
	return r.grouped(ctx, `SELECT status, COUNT(*) FROM lab_tests GROUP BY status`)
}

func (r *dashboardRepoPG) LabTests(ctx context.Context, q LabQuery) ([]LabTestItem, error) {
	where := sq.And{}
	if q.OpenOnly {
		where = append(where, sq.Eq{"lt.status": []string{"ordered", "sample_collected", "in_progress"}})
	}
	if q.DoctorID != nil {
		where = append(where, sq.Eq{"lt.doctor_id": *q.DoctorID})
	}
	if q.PatientID != nil {
		where = append(where, sq.Eq{"lt.patient_id": *q.PatientID})
	}

	query, args, err := psql.Select(
		"lt.id", "u.first_name || ' ' || u.last_name", "lt.test_name", "lt.status",
		"lt.ordered_date", "lt.completed_date",
	).From(`lab_tests lt
		JOIN patients p ON p.id = lt.patient_id
		JOIN users u ON u.id = p.user_id`).
		Where(where).OrderBy("lt.ordered_date DESC").Limit(uint64(q.Limit)).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (LabTestItem, error) {
		var t LabTestItem
		err := row.Scan(&t.ID, &t.PatientName, &t.TestName, &t.Status, &t.OrderedDate, &t.CompletedAt)
		return t, err
	})
}

func (r *dashboardRepoPG) ActivePrescriptions(ctx context.Context, patientID *uuid.UUID, limit int) ([]PrescriptionItem, error) {
	where := sq.And{sq.Eq{"rx.status": "active"}}
	if patientID != nil {
		where = append(where, sq.Eq{"rx.patient_id": *patientID})
	}
	query, args, err := psql.Select(
		"rx.id", "pu.first_name || ' ' || pu.last_name", "du.first_name || ' ' || du.last_name",
		"rx.medication_name", "rx.dosage", "rx.created_at",
	).From(`prescriptions rx
		JOIN patients p ON p.id = rx.patient_id
		JOIN users pu ON pu.id = p.user_id
		JOIN doctors d ON d.id = rx.doctor_id
		JOIN users du ON du.id = d.user_id`).
		Where(where).OrderBy("rx.created_at").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (PrescriptionItem, error) {
		var p PrescriptionItem
		err := row.Scan(&p.ID, &p.PatientName, &p.DoctorName, &p.MedicationName, &p.Dosage, &p.CreatedAt)
		return p, err
	})
}

func (r *dashboardRepoPG) LowStock(ctx context.Context, limit int) ([]StockItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, quantity, reorder_level, unit
		FROM inventory_items
		WHERE quantity <= reorder_level
		ORDER BY quantity - reorder_level, name
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (StockItem, error) {
		var s StockItem
		err := row.Scan(&s.ID, &s.Name, &s.Quantity, &s.ReorderLevel, &s.Unit)
		return s, err
	})
}

func (r *dashboardRepoPG) CountDoctorPatients(ctx context.Context, doctorID uuid.UUID) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(DISTINCT patient_id) FROM appointments
		WHERE doctor_id = $1 AND status <> 'cancelled'`, doctorID)
}

func (r *dashboardRepoPG) RecentPatients(ctx context.Context, limit int) ([]PatientItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, u.first_name || ' ' || u.last_name, p.created_at
		FROM patients p JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (PatientItem, error) {
		var p PatientItem
		err := row.Scan(&p.ID, &p.Name, &p.CreatedAt)
		return p, err
	})
}

func (r *dashboardRepoPG) UnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`, userID)
}
