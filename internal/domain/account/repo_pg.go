package account

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type userRepoPG struct{ q db.TxQuerier }

func NewRepoPG(q db.TxQuerier) Repository {
	return &userRepoPG{q: q}
}

const userCols = `id, email, password_hash, role, first_name, last_name, phone,
	is_active, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.FirstName, &u.LastName, &u.Phone,
		&u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	u.Role = auth.Role(role)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User, patient *PatientProfile, doctor *DoctorProfile) error {
	u.ID = uuid.New()
	err := db.WithTx(ctx, r.q, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (id, email, password_hash, role, first_name, last_name, phone, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true)
			RETURNING is_active, created_at, updated_at`,
			u.ID, u.Email, u.PasswordHash, string(u.Role), u.FirstName, u.LastName, u.Phone,
		).Scan(&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return err
		}

		if patient != nil {
			patient.ID = uuid.New()
			if _, err := tx.Exec(ctx, `
				INSERT INTO patients (id, user_id, date_of_birth, gender)
				VALUES ($1, $2, $3, $4)`,
				patient.ID, u.ID, patient.DateOfBirth, patient.Gender); err != nil {
				return err
			}
		}
		if doctor != nil {
			doctor.ID = uuid.New()
			if _, err := tx.Exec(ctx, `
				INSERT INTO doctors (id, user_id, specialization, license_number, department, is_available)
				VALUES ($1, $2, $3, $4, $5, true)`,
				doctor.ID, u.ID, doctor.Specialization, doctor.LicenseNumber, doctor.Department); err != nil {
				return err
			}
		}
		return nil
	})
	return db.Classify(err)
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return u, nil
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, db.Classify(err)
	}
	return u, nil
}

func (r *userRepoPG) ProfileIDs(ctx context.Context, userID uuid.UUID) (*uuid.UUID, *uuid.UUID, error) {
	var patientID, doctorID *uuid.UUID
	err := r.q.QueryRow(ctx, `
		SELECT (SELECT id FROM patients WHERE user_id = $1),
		       (SELECT id FROM doctors WHERE user_id = $1)`, userID,
	).Scan(&patientID, &doctorID)
	return patientID, doctorID, err
}

func (r *userRepoPG) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.q.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *userRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userCols, id, active))
	if err != nil {
		return nil, db.Classify(err)
	}
	return u, nil
}

func (r *userRepoPG) List(ctx context.Context, f UserFilter, p pagination.Params) ([]*User, int, error) {
	where := sq.And{}
	if f.Role != nil {
		where = append(where, sq.Eq{"role": string(*f.Role)})
	}
	if f.Active != nil {
		where = append(where, sq.Eq{"is_active": *f.Active})
	}
	if f.Search != "" {
		pattern := db.ContainsPattern(f.Search)
		where = append(where, sq.Or{
			sq.ILike{"email": pattern},
			sq.ILike{"first_name": pattern},
			sq.ILike{"last_name": pattern},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := p.Apply(psql.Select(userCols).From("users").
		Where(where).OrderBy("created_at DESC")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
