package blog

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/portal/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Post, int, error)
	Update(ctx context.Context, p *Post) error
	SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error)
}
