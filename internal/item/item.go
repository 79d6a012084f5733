package item

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMinStock is the restock threshold applied when none is given.
const DefaultMinStock = 5

// Item is a catalog entry. Stock is a plain signed count: adjustments may
// drive it negative and it is never clamped.
type Item struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	MinStock    int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// LowStock reports whether the item is at or below its restock threshold.
func (i *Item) LowStock() bool {
	return i.Stock < i.MinStock
}
