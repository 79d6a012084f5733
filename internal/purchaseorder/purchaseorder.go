package purchaseorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/customer"
)

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions: a completed order may be reopened or cancelled (which reverses
// the stock credit); cancelled is terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusPending, StatusCancelled},
}

func (s Status) storable() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
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

// PurchaseOrder records goods ordered from a vendor. Stock moves only when
// the order is received (status crosses the completed boundary), never on
// create or line edits.
type PurchaseOrder struct {
	ID               uuid.UUID
	Number           string
	VendorID         uuid.UUID
	Vendor           *customer.Customer // Loaded via JOIN
	Date             time.Time
	ExpectedDelivery time.Time
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
	Total            decimal.Decimal
	Notes            string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// LineItem is one ordered row. Purchase order lines carry no discount or tax
// rate; the document-level tax is a flat percentage of the subtotal.
type LineItem struct {
	ID          uuid.UUID
	POID        uuid.UUID
	ItemID      *uuid.UUID
	ItemName    string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}
