package quotation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invio/internal/invoice"
)

// ErrNotApproved is returned when converting a quotation that has not been
// approved.
var ErrNotApproved = errors.New("only approved quotations can be converted")

// InvoiceWriter is the slice of the invoice service the conversion needs.
type InvoiceWriter interface {
	CreateConverted(ctx context.Context, inv *invoice.Invoice, lines []invoice.LineItem) (*invoice.Invoice, error)
}

// ConvertToInvoice derives an invoice from an approved quotation. The number
// is the quotation's with the prefix substituted, totals and line totals are
// copied verbatim (never recomputed), the invoice starts pending with the due
// date 30 days out, and the notes carry a provenance marker. The quotation
// itself is left untouched, and no stock is checked or deducted.
func (s *Service) ConvertToInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	q, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}

	if q.Status != StatusApproved {
		return nil, fmt.Errorf("%w: quotation %s is %s", ErrNotApproved, q.Number, q.Status)
	}

	lines, err := s.repo.GetLineItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading quotation lines: %w", err)
	}

	now := s.now()

	inv := &invoice.Invoice{
		Number:     strings.Replace(q.Number, numberPrefix, "INV", 1),
		CustomerID: q.CustomerID,
		Date:       now,
		DueDate:    now.AddDate(0, 0, 30),
		Subtotal:   q.Subtotal,
		Discount:   q.Discount,
		Tax:        q.Tax,
		Total:      q.Total,
		Notes:      strings.TrimSpace(fmt.Sprintf("Converted from Quotation #%s. %s", q.Number, q.Notes)),
		Status:     invoice.StatusPending,
	}

	invLines := make([]invoice.LineItem, len(lines))
	for i, l := range lines {
		invLines[i] = invoice.LineItem{
			ItemID:      l.ItemID,
			ItemName:    l.ItemName,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			TaxRate:     l.TaxRate,
			Total:       l.Total,
		}
	}

	return s.invoices.CreateConverted(ctx, inv, invLines)
}
