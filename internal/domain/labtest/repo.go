package labtest

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/portal/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, t *LabTest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*LabTest, int, error)
	// UpdateStatus returns db.ErrNotFound when the row is no longer in tr.From.
	UpdateStatus(ctx context.Context, id uuid.UUID, tr Transition) (*LabTest, error)
}
