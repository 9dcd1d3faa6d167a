package directory

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/db"
)

type resolverPG struct{ q db.Querier }

func NewResolverPG(q db.Querier) Resolver {
	return &resolverPG{q: q}
}

func (r *resolverPG) lookupID(ctx context.Context, sql string, arg uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	if err := r.q.QueryRow(ctx, sql, arg).Scan(&id); err != nil {
		return uuid.Nil, db.Classify(err)
	}
	return id, nil
}

func (r *resolverPG) PatientIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return r.lookupID(ctx, `SELECT id FROM patients WHERE user_id = $1`, userID)
}

func (r *resolverPG) DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return r.lookupID(ctx, `SELECT id FROM doctors WHERE user_id = $1`, userID)
}

func (r *resolverPG) contact(ctx context.Context, table string, id uuid.UUID) (Contact, error) {
	var c Contact
	err := r.q.QueryRow(ctx, `
		SELECT u.id, u.first_name || ' ' || u.last_name
		FROM `+table+` x JOIN users u ON u.id = x.user_id
		WHERE x.id = $1`, id).Scan(&c.UserID, &c.Name)
	if err != nil {
		return Contact{}, db.Classify(err)
	}
	return c, nil
}

func (r *resolverPG) PatientContact(ctx context.Context, patientID uuid.UUID) (Contact, error) {
	return r.contact(ctx, "patients", patientID)
}

func (r *resolverPG) DoctorContact(ctx context.Context, doctorID uuid.UUID) (Contact, error) {
	return r.contact(ctx, "doctors", doctorID)
}

func (r *resolverPG) HasCareRelationship(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND patient_id = $2 AND status <> 'cancelled'
		)`, doctorID, patientID).Scan(&ok)
	return ok, err
}
