package document

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/portal/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Document, int, error)
	// Delete removes the row only if it belongs to patientID and returns its
	// storage key. Anything else is db.ErrNotFound.
	Delete(ctx context.Context, id, patientID uuid.UUID) (string, error)
}
