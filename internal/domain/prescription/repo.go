package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/portal/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Prescription, int, error)
	// UpdateStatus applies only while the stored status is still from;
	// otherwise it returns db.ErrNotFound. filledBy is recorded on fill.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, filledBy *uuid.UUID) (*Prescription, error)
}
