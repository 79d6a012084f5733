package purchaseorder

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/purchaseorder"
)

type Handler struct {
	svc *purchaseorder.Service
}

func NewHandler(svc *purchaseorder.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/items", h.getLineItems)
	r.Patch("/{id}/status", h.updateStatus)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type lineItemRequest struct {
	ItemID      *uuid.UUID      `json:"item_id,omitempty"`
	ItemName    string          `json:"item_name"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func toLineParams(lines []lineItemRequest) []purchaseorder.LineParams {
	params := make([]purchaseorder.LineParams, len(lines))
	for i, l := range lines {
		params[i] = purchaseorder.LineParams{
			ItemID:      l.ItemID,
			ItemName:    l.ItemName,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}

	return params
}

type createPurchaseOrderRequest struct {
	VendorID         uuid.UUID         `json:"vendor_id"`
	Date             time.Time         `json:"date"`
	ExpectedDelivery time.Time         `json:"expected_delivery"`
	Notes            string            `json:"notes"`
	Lines            []lineItemRequest `json:"line_items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	po, err := h.svc.Create(r.Context(), purchaseorder.CreateParams{
		VendorID:         req.VendorID,
		Date:             req.Date,
		ExpectedDelivery: req.ExpectedDelivery,
		Notes:            req.Notes,
		Lines:            toLineParams(req.Lines),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(po)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pos, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(pos)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	po, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(po)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) getLineItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	lines, err := h.svc.GetLineItems(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toLineResponseList(lines)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updatePurchaseOrderRequest struct {
	VendorID         *uuid.UUID        `json:"vendor_id,omitempty"`
	Date             *time.Time        `json:"date,omitempty"`
	ExpectedDelivery *time.Time        `json:"expected_delivery,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	Lines            []lineItemRequest `json:"line_items,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updatePurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := purchaseorder.UpdateParams{
		VendorID:         req.VendorID,
		Date:             req.Date,
		ExpectedDelivery: req.ExpectedDelivery,
		Notes:            req.Notes,
	}
	if req.Lines != nil {
		params.Lines = toLineParams(req.Lines)
	}

	po, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(po)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateStatusRequest struct {
	Status purchaseorder.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, purchaseorder.ErrNotFound):
		http.Error(w, "purchase order not found", http.StatusNotFound)
	case errors.Is(err, purchaseorder.ErrNoVendor),
		errors.Is(err, purchaseorder.ErrInvalidQuantity),
		errors.Is(err, purchaseorder.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, purchaseorder.ErrCompletedLocked),
		errors.Is(err, purchaseorder.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
