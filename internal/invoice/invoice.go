package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/customer"
)

// Status is the stored lifecycle state of an invoice.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"

	// StatusOverdue is derived from the due date, never stored.
	StatusOverdue Status = "overdue"
)

// transitions lists the allowed stored-status changes. Paid and pending
// toggle both ways; overdue is not a stored state and has no entry.
var transitions = map[Status][]Status{
	StatusDraft:   {StatusPending},
	StatusPending: {StatusPaid},
	StatusPaid:    {StatusPending},
}

func (s Status) storable() bool {
	switch s {
	case StatusDraft, StatusPending, StatusPaid:
		return true
	}

	return false
}

// CanTransitionTo reports whether the change from s to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}

	return false
}

// Invoice is a billing document. Amounts are denormalized from the line items
// at write time so readers never recompute them.
type Invoice struct {
	ID         uuid.UUID
	Number     string
	CustomerID uuid.UUID
	Customer   *customer.Customer // Loaded via JOIN
	Date       time.Time
	DueDate    time.Time
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Notes      string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// EffectiveStatus derives the display status: a pending invoice whose due
// date has elapsed reads as overdue.
func (i *Invoice) EffectiveStatus(now time.Time) Status {
	if i.Status == StatusPending && i.DueDate.Before(now) {
		return StatusOverdue
	}

	return i.Status
}

// LineItem is one row of an invoice. ItemID is captured when the line is
// picked from the catalog; lines typed free-form (services not tracked in
// inventory) leave it nil.
type LineItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	ItemID      *uuid.UUID
	ItemName    string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxRate     decimal.Decimal
	Total       decimal.Decimal
}
