// Package inventory keeps item stock consistent with document lifecycle
// events by applying signed deltas against the catalog.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invio/internal/item"
)

// Catalog is the slice of the item repository the ledger needs.
type Catalog interface {
	GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error)
	GetItemByName(ctx context.Context, name string) (*item.Item, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int64) error
}

// StockDelta is one signed stock adjustment. ItemID is the reference captured
// on the line when the item was picked from the catalog; ItemName is the
// fallback for lines that predate the id capture. A delta that resolves to no
// catalog entry is skipped: untracked items (services) are allowed.
type StockDelta struct {
	ItemID   *uuid.UUID
	ItemName string
	Quantity int64
}

// Invert returns the deltas with their signs flipped.
func Invert(deltas []StockDelta) []StockDelta {
	inverted := make([]StockDelta, len(deltas))
	for i, d := range deltas {
		d.Quantity = -d.Quantity
		inverted[i] = d
	}

	return inverted
}

type Ledger struct {
	catalog Catalog
}

func NewLedger(catalog Catalog) *Ledger {
	return &Ledger{catalog: catalog}
}

// Apply applies each delta in order. It returns the prefix of deltas that
// were applied (resolved or skipped) before any failure, so the caller can
// invert exactly what landed. The ledger itself never rolls back: a partial
// application is the caller's problem to compensate or report.
func (l *Ledger) Apply(ctx context.Context, deltas []StockDelta) ([]StockDelta, error) {
	applied := make([]StockDelta, 0, len(deltas))

	for _, d := range deltas {
		it, err := l.resolve(ctx, d)
		if err != nil {
			return applied, fmt.Errorf("resolving item for stock delta: %w", err)
		}

		if it == nil {
			// Not tracked in inventory; nothing to move.
			slog.Debug("stock delta skipped, item not in catalog", "item_name", d.ItemName)
			continue
		}

		if err := l.catalog.AdjustStock(ctx, it.ID, d.Quantity); err != nil {
			return applied, fmt.Errorf("adjusting stock for %q: %w", it.Name, err)
		}

		applied = append(applied, d)
	}

	return applied, nil
}

func (l *Ledger) resolve(ctx context.Context, d StockDelta) (*item.Item, error) {
	if d.ItemID != nil {
		it, err := l.catalog.GetItem(ctx, *d.ItemID)
		if err == nil {
			return it, nil
		}

		if !errors.Is(err, item.ErrNotFound) {
			return nil, err
		}
	}

	if d.ItemName == "" {
		return nil, nil
	}

	it, err := l.catalog.GetItemByName(ctx, d.ItemName)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return it, nil
}
