package quotation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/invoice"
	"github.com/MrJamesThe3rd/invio/internal/quotation"
)

type quotationResponse struct {
	ID           uuid.UUID        `json:"id"`
	Number       string           `json:"number"`
	CustomerID   uuid.UUID        `json:"customer_id"`
	Customer     *partyResponse   `json:"customer,omitempty"`
	Date         time.Time        `json:"date"`
	ValidUntil   time.Time        `json:"valid_until"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Discount     decimal.Decimal  `json:"discount"`
	Tax          decimal.Decimal  `json:"tax"`
	Total        decimal.Decimal  `json:"total"`
	Notes        string           `json:"notes,omitempty"`
	PaymentTerms string           `json:"payment_terms,omitempty"`
	Status       quotation.Status `json:"status"`
	Expired      bool             `json:"expired"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    *time.Time       `json:"updated_at,omitempty"`
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

// convertedResponse is the invoice produced by the convert endpoint. Only the
// fields a client needs to follow up on the new document are reported.
type convertedResponse struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Date       time.Time       `json:"date"`
	DueDate    time.Time       `json:"due_date"`
	Total      decimal.Decimal `json:"total"`
	Notes      string          `json:"notes,omitempty"`
	Status     invoice.Status  `json:"status"`
}

func toResponse(q *quotation.Quotation, now time.Time) quotationResponse {
	resp := quotationResponse{
		ID:           q.ID,
		Number:       q.Number,
		CustomerID:   q.CustomerID,
		Date:         q.Date,
		ValidUntil:   q.ValidUntil,
		Subtotal:     q.Subtotal,
		Discount:     q.Discount,
		Tax:          q.Tax,
		Total:        q.Total,
		Notes:        q.Notes,
		PaymentTerms: q.PaymentTerms,
		Status:       q.Status,
		Expired:      q.Expired(now),
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}

	if q.Customer != nil {
		resp.Customer = &partyResponse{
			ID:    q.Customer.ID,
			Name:  q.Customer.Name,
			Email: q.Customer.Email,
		}
	}

	return resp
}

func toResponseList(qs []*quotation.Quotation, now time.Time) []quotationResponse {
	resp := make([]quotationResponse, len(qs))
	for i, q := range qs {
		resp[i] = toResponse(q, now)
	}

	return resp
}

func toLineResponseList(lines []quotation.LineItem) []lineItemResponse {
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

func toConvertedResponse(inv *invoice.Invoice) convertedResponse {
	return convertedResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		CustomerID: inv.CustomerID,
		Date:       inv.Date,
		DueDate:    inv.DueDate,
		Total:      inv.Total,
		Notes:      inv.Notes,
		Status:     inv.Status,
	}
}
