package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invio/internal/inventory"
	"github.com/MrJamesThe3rd/invio/internal/item"
)

// fakeCatalog tracks stock in memory, keyed by id and by name.
type fakeCatalog struct {
	items     map[uuid.UUID]*item.Item
	adjustErr map[uuid.UUID]error
	adjustLog []uuid.UUID
}

func newFakeCatalog(items ...*item.Item) *fakeCatalog {
	c := &fakeCatalog{items: make(map[uuid.UUID]*item.Item)}
	for _, it := range items {
		c.items[it.ID] = it
	}

	return c
}

func (c *fakeCatalog) GetItem(_ context.Context, id uuid.UUID) (*item.Item, error) {
	it, ok := c.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}

	return it, nil
}

func (c *fakeCatalog) GetItemByName(_ context.Context, name string) (*item.Item, error) {
	for _, it := range c.items {
		if it.Name == name {
			return it, nil
		}
	}

	return nil, item.ErrNotFound
}

func (c *fakeCatalog) AdjustStock(_ context.Context, id uuid.UUID, delta int64) error {
	if err := c.adjustErr[id]; err != nil {
		return err
	}

	c.items[id].Stock += delta
	c.adjustLog = append(c.adjustLog, id)

	return nil
}

func TestLedger_Apply_ResolvesByID(t *testing.T) {
	it := &item.Item{ID: uuid.New(), Name: "Widget", Stock: 10}
	catalog := newFakeCatalog(it)
	ledger := inventory.NewLedger(catalog)

	applied, err := ledger.Apply(context.Background(), []inventory.StockDelta{
		{ItemID: &it.ID, ItemName: "Widget", Quantity: -3},
	})
	require.NoError(t, err)
	assert.Len(t, applied, 1)
	assert.Equal(t, int64(7), it.Stock)
}

func TestLedger_Apply_FallsBackToName(t *testing.T) {
	it := &item.Item{ID: uuid.New(), Name: "Widget", Stock: 10}
	catalog := newFakeCatalog(it)
	ledger := inventory.NewLedger(catalog)

	// Stale id from a deleted catalog entry still resolves via the name.
	staleID := uuid.New()

	applied, err := ledger.Apply(context.Background(), []inventory.StockDelta{
		{ItemID: &staleID, ItemName: "Widget", Quantity: 5},
	})
	require.NoError(t, err)
	assert.Len(t, applied, 1)
	assert.Equal(t, int64(15), it.Stock)
}

func TestLedger_Apply_SkipsUntrackedItems(t *testing.T) {
	it := &item.Item{ID: uuid.New(), Name: "Widget", Stock: 10}
	catalog := newFakeCatalog(it)
	ledger := inventory.NewLedger(catalog)

	applied, err := ledger.Apply(context.Background(), []inventory.StockDelta{
		{ItemName: "Consulting Hour", Quantity: -4},
		{ItemID: &it.ID, ItemName: "Widget", Quantity: -2},
		{ItemName: "", Quantity: -1},
	})
	require.NoError(t, err)

	// Only the tracked delta lands in the applied prefix.
	assert.Len(t, applied, 1)
	assert.Equal(t, "Widget", applied[0].ItemName)
	assert.Equal(t, int64(8), it.Stock)
}

func TestLedger_Apply_ReturnsAppliedPrefixOnFailure(t *testing.T) {
	first := &item.Item{ID: uuid.New(), Name: "First", Stock: 10}
	second := &item.Item{ID: uuid.New(), Name: "Second", Stock: 10}

	catalog := newFakeCatalog(first, second)
	catalog.adjustErr = map[uuid.UUID]error{second.ID: errors.New("db down")}

	ledger := inventory.NewLedger(catalog)

	applied, err := ledger.Apply(context.Background(), []inventory.StockDelta{
		{ItemID: &first.ID, Quantity: -3},
		{ItemID: &second.ID, Quantity: -5},
	})
	require.Error(t, err)

	// The first delta landed and is reported; the second never applied.
	assert.Len(t, applied, 1)
	assert.Equal(t, int64(7), first.Stock)
	assert.Equal(t, int64(10), second.Stock)

	// Inverting the applied prefix restores the original stock.
	_, err = ledger.Apply(context.Background(), inventory.Invert(applied))
	require.NoError(t, err)
	assert.Equal(t, int64(10), first.Stock)
}

func TestLedger_Apply_CanDriveStockNegative(t *testing.T) {
	it := &item.Item{ID: uuid.New(), Name: "Widget", Stock: 2}
	catalog := newFakeCatalog(it)
	ledger := inventory.NewLedger(catalog)

	_, err := ledger.Apply(context.Background(), []inventory.StockDelta{
		{ItemID: &it.ID, Quantity: -5},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), it.Stock)
}

func TestInvert(t *testing.T) {
	id := uuid.New()
	deltas := []inventory.StockDelta{
		{ItemID: &id, ItemName: "Widget", Quantity: -3},
		{ItemName: "Other", Quantity: 2},
	}

	inverted := inventory.Invert(deltas)

	assert.Equal(t, int64(3), inverted[0].Quantity)
	assert.Equal(t, int64(-2), inverted[1].Quantity)

	// Originals are untouched.
	assert.Equal(t, int64(-3), deltas[0].Quantity)
}
