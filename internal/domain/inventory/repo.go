package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/portal/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Item, int, error)
	Update(ctx context.Context, item *Item) error
	// Adjust adds delta to the stock and records the movement in one
	// statement. It returns db.ErrNotFound when the item is missing or the
	// result would be negative.
	Adjust(ctx context.Context, id uuid.UUID, delta int, reason string, by uuid.UUID) (int, error)
}
