package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/invoice"
)

type invoiceResponse struct {
	ID         uuid.UUID         `json:"id"`
	Number     string            `json:"number"`
	CustomerID uuid.UUID         `json:"customer_id"`
	Customer   *partyResponse    `json:"customer,omitempty"`
	Date       time.Time         `json:"date"`
	DueDate    time.Time         `json:"due_date"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Discount   decimal.Decimal   `json:"discount"`
	Tax        decimal.Decimal   `json:"tax"`
	Total      decimal.Decimal   `json:"total"`
	Notes      string            `json:"notes,omitempty"`
	Status     invoice.Status    `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
}

type partyResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

type lineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      *uuid.UUID      `json:"item_id,omitempty"`
	ItemName    string          `json:"item_name"`
	Description string          `json:"description,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Total       decimal.Decimal `json:"total"`
}

// toResponse reports the effective status: pending invoices past their due
// date read as overdue without a stored transition.
func toResponse(inv *invoice.Invoice, now time.Time) invoiceResponse {
	resp := invoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		CustomerID: inv.CustomerID,
		Date:       inv.Date,
		DueDate:    inv.DueDate,
		Subtotal:   inv.Subtotal,
		Discount:   inv.Discount,
		Tax:        inv.Tax,
		Total:      inv.Total,
		Notes:      inv.Notes,
		Status:     inv.EffectiveStatus(now),
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}

	if inv.Customer != nil {
		resp.Customer = &partyResponse{
			ID:    inv.Customer.ID,
			Name:  inv.Customer.Name,
			Email: inv.Customer.Email,
		}
	}

	return resp
}

func toResponseList(invs []*invoice.Invoice, now time.Time) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv, now)
	}

	return resp
}

func toLineResponseList(lines []invoice.LineItem) []lineItemResponse {
	resp := make([]lineItemResponse, len(lines))
	for i, l := range lines {
		resp[i] = lineItemResponse{
			ID:          l.ID,
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

	return resp
}
