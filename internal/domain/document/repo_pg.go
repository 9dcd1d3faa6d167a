package document

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type documentRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &documentRepoPG{q: q}
}

const documentCols = `id, patient_id, uploaded_by, file_name, content_type, size_bytes, sha256,
	category, description, storage_key, created_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.PatientID, &d.UploadedBy, &d.FileName, &d.ContentType, &d.SizeBytes,
		&d.SHA256, &d.Category, &d.Description, &d.StorageKey, &d.CreatedAt)
	return &d, err
}

func (r *documentRepoPG) Create(ctx context.Context, d *Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO patient_documents (id, patient_id, uploaded_by, file_name, content_type, size_bytes,
			sha256, category, description, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		d.ID, d.PatientID, d.UploadedBy, d.FileName, d.ContentType, d.SizeBytes,
		d.SHA256, d.Category, d.Description, d.StorageKey,
	).Scan(&d.CreatedAt)
	return db.Classify(err)
}

func (r *documentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	d, err := scanDocument(r.q.QueryRow(ctx, `SELECT `+documentCols+` FROM patient_documents WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return d, nil
}

func (r *documentRepoPG) List(ctx context.Context, f Filter, p pagination.Params) ([]*Document, int, error) {
	where := sq.And{}
	if f.PatientID != nil {
		where = append(where, sq.Eq{"patient_id": *f.PatientID})
	}
	if f.CareDoctorID != nil {
		where = append(where, sq.Expr(`EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.patient_id = patient_documents.patient_id AND a.doctor_id = ? AND a.status <> 'cancelled')`, *f.CareDoctorID))
	}
	if f.Category != nil {
		where = append(where, sq.Eq{"category": *f.Category})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("patient_documents").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := p.Apply(psql.Select(documentCols).From("patient_documents").Where(where).OrderBy("created_at DESC")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r *documentRepoPG) Delete(ctx context.Context, id, patientID uuid.UUID) (string, error) {
	var key string
	err := r.q.QueryRow(ctx,
		`DELETE FROM patient_documents WHERE id = $1 AND patient_id = $2 RETURNING storage_key`, id, patientID,
	).Scan(&key)
	if err != nil {
		return "", db.Classify(err)
	}
	return key, nil
}
