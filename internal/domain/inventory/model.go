package inventory

import (
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Category     string     `db:"category" json:"category"`
	Description  *string    `db:"description" json:"description,omitempty"`
	SKU          *string    `db:"sku" json:"sku,omitempty"`
	Quantity     int        `db:"quantity" json:"quantity"`
	Unit         string     `db:"unit" json:"unit"`
	ReorderLevel int        `db:"reorder_level" json:"reorder_level"`
	UnitPrice    *float64   `db:"unit_price" json:"unit_price,omitempty"`
	Supplier     *string    `db:"supplier" json:"supplier,omitempty"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// LowStock reports whether the item is at or below its reorder level.
func (i *Item) LowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

type CreateRequest struct {
	Name         string     `json:"name" validate:"required,max=200"`
	Category     string     `json:"category" validate:"required,oneof=medication supplies equipment other"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	SKU          *string    `json:"sku" validate:"omitempty,max=64"`
	Quantity     int        `json:"quantity" validate:"min=0"`
	Unit         string     `json:"unit" validate:"omitempty,max=32"`
	ReorderLevel int        `json:"reorder_level" validate:"min=0"`
	UnitPrice    *float64   `json:"unit_price" validate:"omitempty,min=0"`
	Supplier     *string    `json:"supplier" validate:"omitempty,max=200"`
	ExpiryDate   *time.Time `json:"expiry_date"`
}

// UpdateRequest changes item metadata. Stock levels only move through Adjust.
type UpdateRequest struct {
	Name         *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Category     *string    `json:"category" validate:"omitempty,oneof=medication supplies equipment other"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	SKU          *string    `json:"sku" validate:"omitempty,max=64"`
	Unit         *string    `json:"unit" validate:"omitempty,max=32"`
	ReorderLevel *int       `json:"reorder_level" validate:"omitempty,min=0"`
	UnitPrice    *float64   `json:"unit_price" validate:"omitempty,min=0"`
	Supplier     *string    `json:"supplier" validate:"omitempty,max=200"`
	ExpiryDate   *time.Time `json:"expiry_date"`
}

type AdjustRequest struct {
	Delta  int    `json:"delta" validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,max=500"`
}

type Filter struct {
	Category *string
	Search   string
	LowStock bool
}
