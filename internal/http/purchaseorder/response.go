package purchaseorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/purchaseorder"
)

type purchaseOrderResponse struct {
	ID               uuid.UUID            `json:"id"`
	Number           string               `json:"number"`
	VendorID         uuid.UUID            `json:"vendor_id"`
	Vendor           *partyResponse       `json:"vendor,omitempty"`
	Date             time.Time            `json:"date"`
	ExpectedDelivery time.Time            `json:"expected_delivery"`
	Subtotal         decimal.Decimal      `json:"subtotal"`
	Tax              decimal.Decimal      `json:"tax"`
	Total            decimal.Decimal      `json:"total"`
	Notes            string               `json:"notes,omitempty"`
	Status           purchaseorder.Status `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        *time.Time           `json:"updated_at,omitempty"`
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
	Total       decimal.Decimal `json:"total"`
}

func toResponse(po *purchaseorder.PurchaseOrder) purchaseOrderResponse {
	resp := purchaseOrderResponse{
		ID:               po.ID,
		Number:           po.Number,
		VendorID:         po.VendorID,
		Date:             po.Date,
		ExpectedDelivery: po.ExpectedDelivery,
		Subtotal:         po.Subtotal,
		Tax:              po.Tax,
		Total:            po.Total,
		Notes:            po.Notes,
		Status:           po.Status,
		CreatedAt:        po.CreatedAt,
		UpdatedAt:        po.UpdatedAt,
	}

	if po.Vendor != nil {
		resp.Vendor = &partyResponse{
			ID:    po.Vendor.ID,
			Name:  po.Vendor.Name,
			Email: po.Vendor.Email,
		}
	}

	return resp
}

func toResponseList(pos []*purchaseorder.PurchaseOrder) []purchaseOrderResponse {
	resp := make([]purchaseOrderResponse, len(pos))
	for i, po := range pos {
		resp[i] = toResponse(po)
	}

	return resp
}

func toLineResponseList(lines []purchaseorder.LineItem) []lineItemResponse {
	resp := make([]lineItemResponse, len(lines))
	for i, l := range lines {
		resp[i] = lineItemResponse{
			ID:          l.ID,
			ItemID:      l.ItemID,
			ItemName:    l.ItemName,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       l.Total,
		}
	}

	return resp
}
