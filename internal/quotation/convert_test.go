package quotation_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invio/internal/invoice"
	"github.com/MrJamesThe3rd/invio/internal/quotation"
)

func approvedQuotation(t *testing.T, repo *fakeRepo) *quotation.Quotation {
	t.Helper()

	customerID := uuid.New()
	itemID := uuid.New()

	q := &quotation.Quotation{
		Number:     "QUO/202607/0009",
		CustomerID: customerID,
		Subtotal:   dec("280"),
		Discount:   dec("20"),
		Tax:        dec("28.5"),
		Total:      dec("288.5"),
		Notes:      "ship to warehouse",
		Status:     quotation.StatusApproved,
	}
	require.NoError(t, repo.CreateQuotation(context.Background(), q))

	repo.lines[q.ID] = []quotation.LineItem{
		{
			ItemID:    &itemID,
			ItemName:  "Widget",
			Quantity:  2,
			UnitPrice: dec("100"),
			Discount:  dec("20"),
			TaxRate:   dec("10"),
			Total:     dec("198"),
		},
		{
			ItemName:  "Consulting Hour",
			Quantity:  1,
			UnitPrice: dec("50"),
			TaxRate:   dec("21"),
			Total:     dec("60.5"),
		},
	}

	return q
}

func TestService_ConvertToInvoice(t *testing.T) {
	repo := newFakeRepo()
	invoices := &fakeInvoiceWriter{}
	svc := newService(repo, invoices)

	q := approvedQuotation(t, repo)

	got, err := svc.ConvertToInvoice(context.Background(), q.ID)
	require.NoError(t, err)

	// The number is derived by swapping the prefix, not re-sequenced.
	assert.Equal(t, "INV/202607/0009", got.Number)
	assert.Equal(t, q.CustomerID, got.CustomerID)
	assert.Equal(t, invoice.StatusPending, got.Status)
	assert.Equal(t, testNow, got.Date)
	assert.Equal(t, testNow.AddDate(0, 0, 30), got.DueDate)
	assert.Equal(t, "Converted from Quotation #QUO/202607/0009. ship to warehouse", got.Notes)

	// Totals are copied verbatim, never recomputed.
	assert.True(t, got.Subtotal.Equal(q.Subtotal))
	assert.True(t, got.Discount.Equal(q.Discount))
	assert.True(t, got.Tax.Equal(q.Tax))
	assert.True(t, got.Total.Equal(q.Total))

	// Every line carries over with its stored total and item reference.
	require.Len(t, invoices.lines, 2)
	assert.Equal(t, repo.lines[q.ID][0].ItemID, invoices.lines[0].ItemID)
	assert.True(t, invoices.lines[0].Total.Equal(dec("198")))
	assert.True(t, invoices.lines[1].Total.Equal(dec("60.5")))

	// The quotation survives the conversion untouched.
	kept, err := repo.GetQuotation(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, quotation.StatusApproved, kept.Status)
}

func TestService_ConvertToInvoice_EmptyNotes(t *testing.T) {
	repo := newFakeRepo()
	invoices := &fakeInvoiceWriter{}
	svc := newService(repo, invoices)

	q := approvedQuotation(t, repo)
	q.Notes = ""
	require.NoError(t, repo.UpdateQuotation(context.Background(), q))

	got, err := svc.ConvertToInvoice(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Converted from Quotation #QUO/202607/0009.", got.Notes)
}

func TestService_ConvertToInvoice_RequiresApproval(t *testing.T) {
	statuses := []quotation.Status{
		quotation.StatusDraft,
		quotation.StatusPending,
		quotation.StatusRejected,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			repo := newFakeRepo()
			svc := newService(repo, &fakeInvoiceWriter{})

			q := approvedQuotation(t, repo)
			q.Status = status
			require.NoError(t, repo.UpdateQuotation(context.Background(), q))

			_, err := svc.ConvertToInvoice(context.Background(), q.ID)
			assert.ErrorIs(t, err, quotation.ErrNotApproved)
		})
	}
}

func TestService_ConvertToInvoice_NotFound(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeInvoiceWriter{})

	_, err := svc.ConvertToInvoice(context.Background(), uuid.New())
	assert.ErrorIs(t, err, quotation.ErrNotFound)
}
