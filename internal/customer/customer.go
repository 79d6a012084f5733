package customer

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a counterparty. Invoices and quotations reference it as the
// billed party; purchase orders reuse the same registry as the vendor.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Address   string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
