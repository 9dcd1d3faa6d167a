package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/pkg/pagination"
)

const defaultUnit = "unit"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) ([]*Item, int, error) {
	return s.repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("inventory item not found")
	}
	return item, err
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	item := &Item{
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		SKU:          req.SKU,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		ReorderLevel: req.ReorderLevel,
		UnitPrice:    req.UnitPrice,
		Supplier:     req.Supplier,
		ExpiryDate:   req.ExpiryDate,
	}
	if item.Unit == "" {
		item.Unit = defaultUnit
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, httpx.Conflict("an item with this sku already exists")
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.SKU != nil {
		item.SKU = req.SKU
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if req.UnitPrice != nil {
		item.UnitPrice = req.UnitPrice
	}
	if req.Supplier != nil {
		item.Supplier = req.Supplier
	}
	if req.ExpiryDate != nil {
		item.ExpiryDate = req.ExpiryDate
	}

	if err := s.repo.Update(ctx, item); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, httpx.NotFound("inventory item not found")
		case errors.Is(err, db.ErrConflict):
			return nil, httpx.Conflict("an item with this sku already exists")
		}
		return nil, err
	}
	return item, nil
}

// Adjust moves stock by delta. A change that would take the quantity below
// zero is refused with 409 and leaves the row untouched.
func (s *Service) Adjust(ctx context.Context, caller *auth.Caller, id uuid.UUID, req AdjustRequest) (*Item, error) {
	quantity, err := s.repo.Adjust(ctx, id, req.Delta, req.Reason, caller.UserID)
	if errors.Is(err, db.ErrNotFound) {
		// Either the item is gone or the stock is too low; tell them apart.
		item, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		e := httpx.Conflict("insufficient stock")
		e.Details = map[string]int{"available": item.Quantity}
		return nil, e
	}
	if err != nil {
		return nil, err
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Quantity = quantity
	if item.LowStock() {
		zerolog.Ctx(ctx).Info().Str("item_id", id.String()).Int("quantity", quantity).
			Int("reorder_level", item.ReorderLevel).Msg("inventory item at or below reorder level")
	}
	return item, nil
}
