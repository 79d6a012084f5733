package purchaseorder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invio/internal/inventory"
	"github.com/MrJamesThe3rd/invio/internal/purchaseorder"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeRepo struct {
	orders map[uuid.UUID]*purchaseorder.PurchaseOrder
	lines  map[uuid.UUID][]purchaseorder.LineItem

	statusWrites []purchaseorder.Status
	statusErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[uuid.UUID]*purchaseorder.PurchaseOrder),
		lines:  make(map[uuid.UUID][]purchaseorder.LineItem),
	}
}

func (f *fakeRepo) CreatePurchaseOrder(_ context.Context, po *purchaseorder.PurchaseOrder) error {
	po.ID = uuid.New()
	f.orders[po.ID] = po

	return nil
}

func (f *fakeRepo) GetPurchaseOrder(_ context.Context, id uuid.UUID) (*purchaseorder.PurchaseOrder, error) {
	po, ok := f.orders[id]
	if !ok {
		return nil, purchaseorder.ErrNotFound
	}

	copied := *po

	return &copied, nil
}

func (f *fakeRepo) ListPurchaseOrders(_ context.Context) ([]*purchaseorder.PurchaseOrder, error) {
	out := make([]*purchaseorder.PurchaseOrder, 0, len(f.orders))
	for _, po := range f.orders {
		out = append(out, po)
	}

	return out, nil
}

func (f *fakeRepo) UpdatePurchaseOrder(_ context.Context, po *purchaseorder.PurchaseOrder) error {
	if _, ok := f.orders[po.ID]; !ok {
		return purchaseorder.ErrNotFound
	}

	copied := *po
	f.orders[po.ID] = &copied

	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status purchaseorder.Status) error {
	if f.statusErr != nil {
		return f.statusErr
	}

	po, ok := f.orders[id]
	if !ok {
		return purchaseorder.ErrNotFound
	}

	po.Status = status
	f.statusWrites = append(f.statusWrites, status)

	return nil
}

func (f *fakeRepo) DeletePurchaseOrder(_ context.Context, id uuid.UUID) error {
	delete(f.orders, id)
	delete(f.lines, id)

	return nil
}

func (f *fakeRepo) CreateLineItems(_ context.Context, poID uuid.UUID, lines []purchaseorder.LineItem) error {
	f.lines[poID] = append(f.lines[poID], lines...)
	return nil
}

func (f *fakeRepo) GetLineItems(_ context.Context, poID uuid.UUID) ([]purchaseorder.LineItem, error) {
	return f.lines[poID], nil
}

func (f *fakeRepo) DeleteLineItems(_ context.Context, poID uuid.UUID) error {
	delete(f.lines, poID)
	return nil
}

type fakeSequencer struct{}

func (fakeSequencer) Next(_ context.Context, prefix string, now time.Time) (string, error) {
	return prefix + "/" + now.Format("200601") + "/0001", nil
}

// fakeLedger records every batch it is asked to apply.
type fakeLedger struct {
	batches  [][]inventory.StockDelta
	applyErr error
}

func (f *fakeLedger) Apply(_ context.Context, deltas []inventory.StockDelta) ([]inventory.StockDelta, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}

	f.batches = append(f.batches, deltas)

	return deltas, nil
}

var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func newService(repo *fakeRepo, ledger *fakeLedger) *purchaseorder.Service {
	return purchaseorder.NewService(repo, fakeSequencer{}, ledger,
		purchaseorder.WithClock(func() time.Time { return testNow }))
}

func createOrder(t *testing.T, svc *purchaseorder.Service) *purchaseorder.PurchaseOrder {
	t.Helper()

	po, err := svc.Create(context.Background(), purchaseorder.CreateParams{
		VendorID: uuid.New(),
		Lines: []purchaseorder.LineParams{
			{ItemName: "Widget", Quantity: 10, UnitPrice: dec("20")},
			{ItemName: "Gadget", Quantity: 4, UnitPrice: dec("25")},
		},
	})
	require.NoError(t, err)

	return po
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	ledger := &fakeLedger{}
	svc := newService(repo, ledger)

	po := createOrder(t, svc)

	assert.Equal(t, "PO/202608/0001", po.Number)
	assert.Equal(t, purchaseorder.StatusPending, po.Status)
	assert.Equal(t, testNow, po.Date)
	assert.Equal(t, testNow.AddDate(0, 0, 14), po.ExpectedDelivery)
	assert.True(t, po.Subtotal.Equal(dec("300")), "subtotal %s", po.Subtotal)
	assert.True(t, po.Tax.Equal(dec("30")), "tax %s", po.Tax)
	assert.True(t, po.Total.Equal(dec("330")), "total %s", po.Total)

	// Ordering goods moves nothing until they arrive.
	assert.Empty(t, ledger.batches)
}

func TestService_Create_MissingVendor(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeLedger{})

	_, err := svc.Create(context.Background(), purchaseorder.CreateParams{})
	assert.ErrorIs(t, err, purchaseorder.ErrNoVendor)
}

func TestService_UpdateStatus_CompletionCreditsStock(t *testing.T) {
	repo := newFakeRepo()
	ledger := &fakeLedger{}
	svc := newService(repo, ledger)

	po := createOrder(t, svc)

	err := svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusCompleted)
	require.NoError(t, err)

	require.Len(t, ledger.batches, 1)
	assert.Equal(t, int64(10), ledger.batches[0][0].Quantity)
	assert.Equal(t, int64(4), ledger.batches[0][1].Quantity)
	assert.Equal(t, purchaseorder.StatusCompleted, repo.orders[po.ID].Status)
}

func TestService_UpdateStatus_ReopeningDebitsStockBack(t *testing.T) {
	repo := newFakeRepo()
	ledger := &fakeLedger{}
	svc := newService(repo, ledger)

	po := createOrder(t, svc)

	require.NoError(t, svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusCompleted))
	require.NoError(t, svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusPending))

	// Credit on receipt, equal debit on reopen: the round trip nets to zero.
	require.Len(t, ledger.batches, 2)
	for i := range ledger.batches[0] {
		assert.Equal(t, ledger.batches[0][i].Quantity, -ledger.batches[1][i].Quantity)
	}
}

func TestService_UpdateStatus_CancellingCompletedReversesCredit(t *testing.T) {
	repo := newFakeRepo()
	ledger := &fakeLedger{}
	svc := newService(repo, ledger)

	po := createOrder(t, svc)

	require.NoError(t, svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusCompleted))
	require.NoError(t, svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusCancelled))

	require.Len(t, ledger.batches, 2)
	assert.Equal(t, int64(-10), ledger.batches[1][0].Quantity)
	assert.Equal(t, purchaseorder.StatusCancelled, repo.orders[po.ID].Status)
}

func TestService_UpdateStatus_CancellingPendingMovesNothing(t *testing.T) {
	repo := newFakeRepo()
	ledger := &fakeLedger{}
	svc := newService(repo, ledger)

	po := createOrder(t, svc)

	require.NoError(t, svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusCancelled))
	assert.Empty(t, ledger.batches)
}

func TestService_UpdateStatus_CancelledIsTerminal(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeLedger{})

	po := createOrder(t, svc)
	require.NoError(t, svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusCancelled))

	err := svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusPending)
	assert.ErrorIs(t, err, purchaseorder.ErrInvalidTransition)
}

func TestService_UpdateStatus_SameStatusIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	ledger := &fakeLedger{}
	svc := newService(repo, ledger)

	po := createOrder(t, svc)

	require.NoError(t, svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusPending))
	assert.Empty(t, repo.statusWrites)
	assert.Empty(t, ledger.batches)
}

func TestService_UpdateStatus_LedgerFailureRevertsStatus(t *testing.T) {
	repo := newFakeRepo()
	ledger := &fakeLedger{applyErr: errors.New("db down")}
	svc := newService(repo, ledger)

	po := createOrder(t, svc)

	err := svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusCompleted)
	require.Error(t, err)

	// The status write landed first, then was compensated back to pending.
	assert.Equal(t, purchaseorder.StatusPending, repo.orders[po.ID].Status)
	assert.Equal(t, []purchaseorder.Status{
		purchaseorder.StatusCompleted,
		purchaseorder.StatusPending,
	}, repo.statusWrites)
}

func TestService_Update_CompletedOrderIsLocked(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeLedger{})

	po := createOrder(t, svc)
	require.NoError(t, svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusCompleted))

	before := *repo.orders[po.ID]

	notes := "changed"
	_, err := svc.Update(context.Background(), po.ID, purchaseorder.UpdateParams{
		Notes: &notes,
		Lines: []purchaseorder.LineParams{{ItemName: "Widget", Quantity: 99, UnitPrice: dec("1")}},
	})
	assert.ErrorIs(t, err, purchaseorder.ErrCompletedLocked)

	// Nothing about the order changed, headers or lines.
	assert.Equal(t, before, *repo.orders[po.ID])
	assert.Equal(t, int64(10), repo.lines[po.ID][0].Quantity)
}

func TestService_Update_PendingOrderRecalculatesTotals(t *testing.T) {
	repo := newFakeRepo()
	ledger := &fakeLedger{}
	svc := newService(repo, ledger)

	po := createOrder(t, svc)

	got, err := svc.Update(context.Background(), po.ID, purchaseorder.UpdateParams{
		Lines: []purchaseorder.LineParams{{ItemName: "Widget", Quantity: 2, UnitPrice: dec("50")}},
	})
	require.NoError(t, err)

	assert.True(t, got.Subtotal.Equal(dec("100")), "subtotal %s", got.Subtotal)
	assert.True(t, got.Tax.Equal(dec("10")), "tax %s", got.Tax)
	assert.True(t, got.Total.Equal(dec("110")), "total %s", got.Total)

	// Editing pending order lines never touches the ledger.
	assert.Empty(t, ledger.batches)
}

func TestService_Delete_CompletedOrderKeepsCredit(t *testing.T) {
	repo := newFakeRepo()
	ledger := &fakeLedger{}
	svc := newService(repo, ledger)

	po := createOrder(t, svc)
	require.NoError(t, svc.UpdateStatus(context.Background(), po.ID, purchaseorder.StatusCompleted))

	require.NoError(t, svc.Delete(context.Background(), po.ID))

	// Only the receipt credit ever hit the ledger; delete added nothing.
	assert.Len(t, ledger.batches, 1)
	assert.NotContains(t, repo.orders, po.ID)
}
