package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invio/internal/inventory"
	"github.com/MrJamesThe3rd/invio/internal/invoice"
	"github.com/MrJamesThe3rd/invio/internal/item"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type mocks struct {
	repo    *invoice.MockRepository
	seq     *invoice.MockSequencer
	ledger  *invoice.MockLedger
	catalog *invoice.MockCatalog
}

func newService(t *testing.T, now time.Time) (*invoice.Service, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:    invoice.NewMockRepository(ctrl),
		seq:     invoice.NewMockSequencer(ctrl),
		ledger:  invoice.NewMockLedger(ctrl),
		catalog: invoice.NewMockCatalog(ctrl),
	}

	svc := invoice.NewService(m.repo, m.seq, m.ledger, m.catalog,
		invoice.WithClock(func() time.Time { return now }))

	return svc, m
}

func TestService_Create(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	widgetID := uuid.New()
	widget := &item.Item{ID: widgetID, Name: "Widget", Stock: 10}

	svc, m := newService(t, now)

	m.catalog.EXPECT().GetItem(gomock.Any(), widgetID).Return(widget, nil)
	m.seq.EXPECT().Next(gomock.Any(), "INV", now).Return("INV/202608/0001", nil)
	m.repo.EXPECT().
		CreateInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			inv.ID = uuid.New()
			inv.CreatedAt = now
			return nil
		})
	m.repo.EXPECT().CreateLineItems(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	m.ledger.EXPECT().
		Apply(gomock.Any(), []inventory.StockDelta{
			{ItemID: &widgetID, ItemName: "Widget", Quantity: -2},
		}).
		Return([]inventory.StockDelta{
			{ItemID: &widgetID, ItemName: "Widget", Quantity: -2},
		}, nil)

	got, err := svc.Create(context.Background(), invoice.CreateParams{
		CustomerID: uuid.New(),
		Lines: []invoice.LineParams{
			{
				ItemID:    &widgetID,
				ItemName:  "Widget",
				Quantity:  2,
				UnitPrice: dec("100"),
				Discount:  dec("20"),
				TaxRate:   dec("10"),
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV/202608/0001", got.Number)
	assert.Equal(t, invoice.StatusDraft, got.Status)
	assert.Equal(t, now, got.Date)
	assert.Equal(t, now.AddDate(0, 0, 30), got.DueDate)
	assert.True(t, got.Subtotal.Equal(dec("200")), "subtotal %s", got.Subtotal)
	assert.True(t, got.Discount.Equal(dec("20")), "discount %s", got.Discount)
	assert.True(t, got.Tax.Equal(dec("18")), "tax %s", got.Tax)
	assert.True(t, got.Total.Equal(dec("198")), "total %s", got.Total)
}

func TestService_Create_Rejections(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	widgetID := uuid.New()

	type testCase struct {
		name      string
		params    invoice.CreateParams
		setupMock func(m mocks)
		wantErr   error
	}

	tests := []testCase{
		{
			name:    "MissingCustomer",
			params:  invoice.CreateParams{},
			wantErr: invoice.ErrNoCustomer,
		},
		{
			name: "ZeroQuantity",
			params: invoice.CreateParams{
				CustomerID: uuid.New(),
				Lines:      []invoice.LineParams{{ItemName: "Widget", Quantity: 0}},
			},
			wantErr: invoice.ErrInvalidQuantity,
		},
		{
			name: "NegativeQuantity",
			params: invoice.CreateParams{
				CustomerID: uuid.New(),
				Lines:      []invoice.LineParams{{ItemName: "Widget", Quantity: -1}},
			},
			wantErr: invoice.ErrInvalidQuantity,
		},
		{
			name: "UnknownStatus",
			params: invoice.CreateParams{
				CustomerID: uuid.New(),
				Status:     invoice.Status("archived"),
			},
			wantErr: invoice.ErrInvalidStatus,
		},
		{
			name: "OverdueNotStorable",
			params: invoice.CreateParams{
				CustomerID: uuid.New(),
				Status:     invoice.StatusOverdue,
			},
			wantErr: invoice.ErrInvalidStatus,
		},
		{
			name: "InsufficientStock",
			params: invoice.CreateParams{
				CustomerID: uuid.New(),
				Lines: []invoice.LineParams{
					{ItemID: &widgetID, ItemName: "Widget", Quantity: 5, UnitPrice: dec("10")},
				},
			},
			setupMock: func(m mocks) {
				m.catalog.EXPECT().
					GetItem(gomock.Any(), widgetID).
					Return(&item.Item{ID: widgetID, Name: "Widget", Stock: 3}, nil)
			},
			wantErr: invoice.ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t, now)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			got, err := svc.Create(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestService_Create_UntrackedLineSkipsStockCheck(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	svc, m := newService(t, now)

	// A line naming no catalog entry is a service row: no stock gate.
	m.catalog.EXPECT().
		GetItemByName(gomock.Any(), "Consulting Hour").
		Return(nil, item.ErrNotFound)
	m.seq.EXPECT().Next(gomock.Any(), "INV", now).Return("INV/202608/0002", nil)
	m.repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
	m.repo.EXPECT().CreateLineItems(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	m.ledger.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := svc.Create(context.Background(), invoice.CreateParams{
		CustomerID: uuid.New(),
		Lines: []invoice.LineParams{
			{ItemName: "Consulting Hour", Quantity: 3, UnitPrice: dec("120")},
		},
	})
	require.NoError(t, err)
}

func TestService_Create_LedgerFailureCompensates(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	widgetID := uuid.New()
	widget := &item.Item{ID: widgetID, Name: "Widget", Stock: 10}

	svc, m := newService(t, now)

	invID := uuid.New()

	m.catalog.EXPECT().GetItem(gomock.Any(), widgetID).Return(widget, nil)
	m.seq.EXPECT().Next(gomock.Any(), "INV", now).Return("INV/202608/0003", nil)
	m.repo.EXPECT().
		CreateInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			inv.ID = invID
			return nil
		})
	m.repo.EXPECT().CreateLineItems(gomock.Any(), invID, gomock.Any()).Return(nil)

	// The batch fails after one delta landed; the service inverts the applied
	// prefix, then removes the lines and the invoice it just wrote.
	partiallyApplied := []inventory.StockDelta{
		{ItemID: &widgetID, ItemName: "Widget", Quantity: -2},
	}
	m.ledger.EXPECT().
		Apply(gomock.Any(), gomock.Any()).
		Return(partiallyApplied, errors.New("db down"))
	m.ledger.EXPECT().
		Apply(gomock.Any(), inventory.Invert(partiallyApplied)).
		Return(nil, nil)
	m.repo.EXPECT().DeleteLineItems(gomock.Any(), invID).Return(nil)
	m.repo.EXPECT().DeleteInvoice(gomock.Any(), invID).Return(nil)

	got, err := svc.Create(context.Background(), invoice.CreateParams{
		CustomerID: uuid.New(),
		Lines: []invoice.LineParams{
			{ItemID: &widgetID, ItemName: "Widget", Quantity: 2, UnitPrice: dec("100")},
		},
	})
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestService_Update_ReplacingLinesReversesOldDeltasFirst(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	widgetID := uuid.New()
	invID := uuid.New()

	svc, m := newService(t, now)

	existing := &invoice.Invoice{
		ID:         invID,
		Number:     "INV/202608/0004",
		CustomerID: uuid.New(),
		Status:     invoice.StatusDraft,
	}
	oldLines := []invoice.LineItem{
		{ItemID: &widgetID, ItemName: "Widget", Quantity: 2, UnitPrice: dec("100")},
	}

	m.repo.EXPECT().GetInvoice(gomock.Any(), invID).Return(existing, nil)
	m.repo.EXPECT().GetLineItems(gomock.Any(), invID).Return(oldLines, nil)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), gomock.Any()).Return(nil)
	m.repo.EXPECT().DeleteLineItems(gomock.Any(), invID).Return(nil)
	m.repo.EXPECT().CreateLineItems(gomock.Any(), invID, gomock.Any()).Return(nil)

	// The old deduction is credited back in full before the new one lands.
	gomock.InOrder(
		m.ledger.EXPECT().
			Apply(gomock.Any(), []inventory.StockDelta{
				{ItemID: &widgetID, ItemName: "Widget", Quantity: 2},
			}).
			Return(nil, nil),
		m.ledger.EXPECT().
			Apply(gomock.Any(), []inventory.StockDelta{
				{ItemID: &widgetID, ItemName: "Widget", Quantity: -5},
			}).
			Return(nil, nil),
	)

	got, err := svc.Update(context.Background(), invID, invoice.UpdateParams{
		Lines: []invoice.LineParams{
			{ItemID: &widgetID, ItemName: "Widget", Quantity: 5, UnitPrice: dec("100")},
		},
	})
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(dec("500")), "subtotal %s", got.Subtotal)
}

func TestService_Update_WithoutLinesKeepsStockAlone(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	invID := uuid.New()

	svc, m := newService(t, now)

	existing := &invoice.Invoice{ID: invID, Notes: "old", Status: invoice.StatusDraft}

	m.repo.EXPECT().GetInvoice(gomock.Any(), invID).Return(existing, nil)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), gomock.Any()).Return(nil)

	notes := "updated"
	got, err := svc.Update(context.Background(), invID, invoice.UpdateParams{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Notes)
}

func TestService_UpdateStatus(t *testing.T) {
	type testCase struct {
		name    string
		from    invoice.Status
		to      invoice.Status
		wantErr error
	}

	tests := []testCase{
		{name: "DraftToPending", from: invoice.StatusDraft, to: invoice.StatusPending},
		{name: "PendingToPaid", from: invoice.StatusPending, to: invoice.StatusPaid},
		{name: "PaidBackToPending", from: invoice.StatusPaid, to: invoice.StatusPending},
		{name: "DraftToPaidRejected", from: invoice.StatusDraft, to: invoice.StatusPaid, wantErr: invoice.ErrInvalidTransition},
		{name: "PendingToDraftRejected", from: invoice.StatusPending, to: invoice.StatusDraft, wantErr: invoice.ErrInvalidTransition},
		{name: "OverdueRejectedAsTarget", from: invoice.StatusPending, to: invoice.StatusOverdue, wantErr: invoice.ErrInvalidTransition},
	}

	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t, now)

			invID := uuid.New()
			m.repo.EXPECT().
				GetInvoice(gomock.Any(), invID).
				Return(&invoice.Invoice{ID: invID, Status: tt.from}, nil)

			if tt.wantErr == nil {
				m.repo.EXPECT().UpdateStatus(gomock.Any(), invID, tt.to).Return(nil)
			}

			err := svc.UpdateStatus(context.Background(), invID, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Delete_DoesNotRestoreStock(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	invID := uuid.New()

	svc, m := newService(t, now)

	m.repo.EXPECT().
		GetInvoice(gomock.Any(), invID).
		Return(&invoice.Invoice{ID: invID, Number: "INV/202608/0005"}, nil)
	m.repo.EXPECT().DeleteInvoice(gomock.Any(), invID).Return(nil)
	// No ledger expectations: deleting an invoice leaves the deduction in place.

	err := svc.Delete(context.Background(), invID)
	require.NoError(t, err)
}

func TestService_CreateConverted_PersistsVerbatim(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	svc, m := newService(t, now)

	inv := &invoice.Invoice{
		Number:     "INV/202608/0006",
		CustomerID: uuid.New(),
		Subtotal:   dec("280"),
		Discount:   dec("20"),
		Tax:        dec("28.5"),
		Total:      dec("288.5"),
		Status:     invoice.StatusPending,
	}
	lines := []invoice.LineItem{
		{ItemName: "Widget", Quantity: 2, UnitPrice: dec("100"), Total: dec("198")},
	}

	m.repo.EXPECT().
		CreateInvoice(gomock.Any(), inv).
		DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			inv.ID = uuid.New()
			return nil
		})
	m.repo.EXPECT().CreateLineItems(gomock.Any(), gomock.Any(), lines).Return(nil)
	// No ledger or sequencer expectations: conversion reuses the derived
	// number and never moves stock.

	got, err := svc.CreateConverted(context.Background(), inv, lines)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(dec("288.5")))
}

func TestService_EffectiveStatus(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	type testCase struct {
		name   string
		status invoice.Status
		due    time.Time
		want   invoice.Status
	}

	tests := []testCase{
		{name: "PendingPastDue", status: invoice.StatusPending, due: now.AddDate(0, 0, -1), want: invoice.StatusOverdue},
		{name: "PendingNotYetDue", status: invoice.StatusPending, due: now.AddDate(0, 0, 1), want: invoice.StatusPending},
		{name: "PaidPastDue", status: invoice.StatusPaid, due: now.AddDate(0, 0, -30), want: invoice.StatusPaid},
		{name: "DraftPastDue", status: invoice.StatusDraft, due: now.AddDate(0, 0, -30), want: invoice.StatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &invoice.Invoice{Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.want, inv.EffectiveStatus(now))
		})
	}
}
