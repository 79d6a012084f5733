package quotation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/quotation"
)

type Handler struct {
	svc *quotation.Service
	now func() time.Time
}

func NewHandler(svc *quotation.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/items", h.getLineItems)
	r.Post("/{id}/convert", h.convert)
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
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

func toLineParams(lines []lineItemRequest) []quotation.LineParams {
	params := make([]quotation.LineParams, len(lines))
	for i, l := range lines {
		params[i] = quotation.LineParams{
			ItemID:      l.ItemID,
			ItemName:    l.ItemName,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			TaxRate:     l.TaxRate,
		}
	}

	return params
}

type createQuotationRequest struct {
	CustomerID   uuid.UUID         `json:"customer_id"`
	Date         time.Time         `json:"date"`
	ValidUntil   time.Time         `json:"valid_until"`
	Notes        string            `json:"notes"`
	PaymentTerms string            `json:"payment_terms"`
	Status       quotation.Status  `json:"status"`
	Lines        []lineItemRequest `json:"line_items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	q, err := h.svc.Create(r.Context(), quotation.CreateParams{
		CustomerID:   req.CustomerID,
		Date:         req.Date,
		ValidUntil:   req.ValidUntil,
		Notes:        req.Notes,
		PaymentTerms: req.PaymentTerms,
		Status:       req.Status,
		Lines:        toLineParams(req.Lines),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(q, h.now())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	qs, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(qs, h.now())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	q, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(q, h.now())); err != nil {
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

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.ConvertToInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toConvertedResponse(inv)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateQuotationRequest struct {
	CustomerID   *uuid.UUID        `json:"customer_id,omitempty"`
	Date         *time.Time        `json:"date,omitempty"`
	ValidUntil   *time.Time        `json:"valid_until,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	PaymentTerms *string           `json:"payment_terms,omitempty"`
	Lines        []lineItemRequest `json:"line_items,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := quotation.UpdateParams{
		CustomerID:   req.CustomerID,
		Date:         req.Date,
		ValidUntil:   req.ValidUntil,
		Notes:        req.Notes,
		PaymentTerms: req.PaymentTerms,
	}
	if req.Lines != nil {
		params.Lines = toLineParams(req.Lines)
	}

	q, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(q, h.now())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateStatusRequest struct {
	Status quotation.Status `json:"status"`
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
	case errors.Is(err, quotation.ErrNotFound):
		http.Error(w, "quotation not found", http.StatusNotFound)
	case errors.Is(err, quotation.ErrNoCustomer),
		errors.Is(err, quotation.ErrInvalidQuantity),
		errors.Is(err, quotation.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, quotation.ErrNotApproved),
		errors.Is(err, quotation.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
