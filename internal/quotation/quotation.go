package quotation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/customer"
)

// Status is the lifecycle state of a quotation.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusDraft:   {StatusPending},
	StatusPending: {StatusApproved, StatusRejected},
}

func (s Status) storable() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}

	return false
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}

	return false
}

// Quotation is a pre-sale offer. It never moves stock.
type Quotation struct {
	ID           uuid.UUID
	Number       string
	CustomerID   uuid.UUID
	Customer     *customer.Customer // Loaded via JOIN
	Date         time.Time
	ValidUntil   time.Time
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Notes        string
	PaymentTerms string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Expired reports whether the validity window has elapsed. Display only:
// nothing transitions automatically when a quotation expires.
func (q *Quotation) Expired(now time.Time) bool {
	return q.ValidUntil.Before(now)
}

type LineItem struct {
	ID          uuid.UUID
	QuotationID uuid.UUID
	ItemID      *uuid.UUID
	ItemName    string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxRate     decimal.Decimal
	Total       decimal.Decimal
}
