package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/compensate"
	"github.com/MrJamesThe3rd/invio/internal/document"
)

const numberPrefix = "QUO"

var (
	ErrNotFound          = errors.New("quotation not found")
	ErrNoCustomer        = errors.New("quotation requires a customer")
	ErrInvalidQuantity   = errors.New("line quantity must be positive")
	ErrInvalidStatus     = errors.New("invalid quotation status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repository interface {
	CreateQuotation(ctx context.Context, q *Quotation) error
	GetQuotation(ctx context.Context, id uuid.UUID) (*Quotation, error)
	ListQuotations(ctx context.Context) ([]*Quotation, error)
	UpdateQuotation(ctx context.Context, q *Quotation) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	DeleteQuotation(ctx context.Context, id uuid.UUID) error

	CreateLineItems(ctx context.Context, quotationID uuid.UUID, lines []LineItem) error
	GetLineItems(ctx context.Context, quotationID uuid.UUID) ([]LineItem, error)
	DeleteLineItems(ctx context.Context, quotationID uuid.UUID) error
}

type Sequencer interface {
	Next(ctx context.Context, prefix string, now time.Time) (string, error)
}

type Service struct {
	repo     Repository
	seq      Sequencer
	invoices InvoiceWriter
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, seq Sequencer, invoices InvoiceWriter, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		seq:      seq,
		invoices: invoices,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type LineParams struct {
	ItemID      *uuid.UUID
	ItemName    string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxRate     decimal.Decimal
}

type CreateParams struct {
	CustomerID   uuid.UUID
	Date         time.Time // zero value means today
	ValidUntil   time.Time // zero value means Date + 30 days
	Notes        string
	PaymentTerms string
	Status       Status // empty means draft
	Lines        []LineParams
}

// Create assigns a number, computes totals and persists the quotation with
// its lines. Quotations are pre-sale: no stock is checked or moved.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Quotation, error) {
	if params.CustomerID == uuid.Nil {
		return nil, ErrNoCustomer
	}

	if err := validateQuantities(params.Lines); err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = StatusDraft
	}

	if !status.storable() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	now := s.now()

	number, err := s.seq.Next(ctx, numberPrefix, now)
	if err != nil {
		return nil, err
	}

	date := params.Date
	if date.IsZero() {
		date = now
	}

	validUntil := params.ValidUntil
	if validUntil.IsZero() {
		validUntil = date.AddDate(0, 0, 30)
	}

	lines := buildLines(params.Lines)
	totals := document.CalculateTotals(calcLines(params.Lines))

	q := &Quotation{
		Number:       number,
		CustomerID:   params.CustomerID,
		Date:         date,
		ValidUntil:   validUntil,
		Subtotal:     totals.Subtotal,
		Discount:     totals.Discount,
		Tax:          totals.Tax,
		Total:        totals.Total,
		Notes:        params.Notes,
		PaymentTerms: params.PaymentTerms,
		Status:       status,
	}

	var undo compensate.Stack

	if err := s.repo.CreateQuotation(ctx, q); err != nil {
		return nil, fmt.Errorf("creating quotation: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.DeleteQuotation(ctx, q.ID) })

	if err := s.repo.CreateLineItems(ctx, q.ID, lines); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("creating quotation lines: %w", err)
	}

	return q, nil
}

type UpdateParams struct {
	CustomerID   *uuid.UUID
	Date         *time.Time
	ValidUntil   *time.Time
	Notes        *string
	PaymentTerms *string
	Lines        []LineParams // nil keeps the existing lines
}

// Update patches the quotation and, when Lines is set, replaces the line
// items. Replacing quotation lines never touches stock.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Quotation, error) {
	q, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}

	orig := *q

	if params.CustomerID != nil {
		q.CustomerID = *params.CustomerID
	}

	if params.Date != nil {
		q.Date = *params.Date
	}

	if params.ValidUntil != nil {
		q.ValidUntil = *params.ValidUntil
	}

	if params.Notes != nil {
		q.Notes = *params.Notes
	}

	if params.PaymentTerms != nil {
		q.PaymentTerms = *params.PaymentTerms
	}

	if params.Lines == nil {
		if err := s.repo.UpdateQuotation(ctx, q); err != nil {
			return nil, fmt.Errorf("updating quotation: %w", err)
		}

		return q, nil
	}

	if err := validateQuantities(params.Lines); err != nil {
		return nil, err
	}

	oldLines, err := s.repo.GetLineItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading quotation lines: %w", err)
	}

	totals := document.CalculateTotals(calcLines(params.Lines))
	q.Subtotal = totals.Subtotal
	q.Discount = totals.Discount
	q.Tax = totals.Tax
	q.Total = totals.Total

	var undo compensate.Stack

	if err := s.repo.UpdateQuotation(ctx, q); err != nil {
		return nil, fmt.Errorf("updating quotation: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.UpdateQuotation(ctx, &orig) })

	if err := s.repo.DeleteLineItems(ctx, id); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("removing old quotation lines: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.CreateLineItems(ctx, id, oldLines) })

	if err := s.repo.CreateLineItems(ctx, id, buildLines(params.Lines)); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("creating quotation lines: %w", err)
	}

	return q, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	q, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return err
	}

	if !q.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, q.Status, status)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteQuotation(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	return s.repo.GetQuotation(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Quotation, error) {
	return s.repo.ListQuotations(ctx)
}

func (s *Service) GetLineItems(ctx context.Context, id uuid.UUID) ([]LineItem, error) {
	return s.repo.GetLineItems(ctx, id)
}

func validateQuantities(lines []LineParams) error {
	for _, l := range lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: %q has quantity %d", ErrInvalidQuantity, l.ItemName, l.Quantity)
		}
	}

	return nil
}

func buildLines(params []LineParams) []LineItem {
	lines := make([]LineItem, len(params))

	for i, p := range params {
		lines[i] = LineItem{
			ItemID:      p.ItemID,
			ItemName:    p.ItemName,
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Discount:    p.Discount,
			TaxRate:     p.TaxRate,
			Total: document.LineTotal(document.Line{
				Quantity:  p.Quantity,
				UnitPrice: p.UnitPrice,
				Discount:  p.Discount,
				TaxRate:   p.TaxRate,
			}),
		}
	}

	return lines
}

func calcLines(params []LineParams) []document.Line {
	lines := make([]document.Line, len(params))

	for i, p := range params {
		lines[i] = document.Line{
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
			Discount:  p.Discount,
			TaxRate:   p.TaxRate,
		}
	}

	return lines
}
