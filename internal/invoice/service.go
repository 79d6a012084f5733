package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/compensate"
	"github.com/MrJamesThe3rd/invio/internal/document"
	"github.com/MrJamesThe3rd/invio/internal/inventory"
	"github.com/MrJamesThe3rd/invio/internal/item"
)

const numberPrefix = "INV"

var (
	ErrNotFound          = errors.New("invoice not found")
	ErrNoCustomer        = errors.New("invoice requires a customer")
	ErrInvalidQuantity   = errors.New("line quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid invoice status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	CreateLineItems(ctx context.Context, invoiceID uuid.UUID, lines []LineItem) error
	GetLineItems(ctx context.Context, invoiceID uuid.UUID) ([]LineItem, error)
	DeleteLineItems(ctx context.Context, invoiceID uuid.UUID) error
}

// Sequencer hands out document numbers.
type Sequencer interface {
	Next(ctx context.Context, prefix string, now time.Time) (string, error)
}

// Ledger applies stock deltas and reports the prefix that landed.
type Ledger interface {
	Apply(ctx context.Context, deltas []inventory.StockDelta) ([]inventory.StockDelta, error)
}

// Catalog resolves line references for the stock check at creation.
type Catalog interface {
	GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error)
	GetItemByName(ctx context.Context, name string) (*item.Item, error)
}

type Service struct {
	repo    Repository
	seq     Sequencer
	ledger  Ledger
	catalog Catalog
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, seq Sequencer, ledger Ledger, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		seq:     seq,
		ledger:  ledger,
		catalog: catalog,
		now:     time.Now,
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
	CustomerID uuid.UUID
	Date       time.Time // zero value means today
	DueDate    time.Time // zero value means Date + 30 days
	Notes      string
	Status     Status // empty means draft
	Lines      []LineParams
}

// Create validates the input, assigns a number, computes totals, persists the
// invoice and its lines, then deducts stock for every tracked line. Writes
// that landed before a failure are compensated before the error returns.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
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

	// Stock is checked here only; edits are allowed to overdraw (the edit
	// path reverses the old deltas first, so a strict check would reject
	// legitimate quantity bumps).
	if err := s.checkStock(ctx, params.Lines); err != nil {
		return nil, err
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

	due := params.DueDate
	if due.IsZero() {
		due = date.AddDate(0, 0, 30)
	}

	lines := buildLines(params.Lines)
	totals := document.CalculateTotals(calcLines(params.Lines))

	inv := &Invoice{
		Number:     number,
		CustomerID: params.CustomerID,
		Date:       date,
		DueDate:    due,
		Subtotal:   totals.Subtotal,
		Discount:   totals.Discount,
		Tax:        totals.Tax,
		Total:      totals.Total,
		Notes:      params.Notes,
		Status:     status,
	}

	var undo compensate.Stack

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.DeleteInvoice(ctx, inv.ID) })

	if err := s.repo.CreateLineItems(ctx, inv.ID, lines); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("creating invoice lines: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.DeleteLineItems(ctx, inv.ID) })

	applied, err := s.ledger.Apply(ctx, stockDeltas(lines, -1))
	if err != nil {
		s.revertDeltas(ctx, applied, inv.Number)
		undo.Unwind(ctx)

		return nil, fmt.Errorf("deducting stock: %w", err)
	}

	return inv, nil
}

type UpdateParams struct {
	CustomerID *uuid.UUID
	Date       *time.Time
	DueDate    *time.Time
	Notes      *string
	Lines      []LineParams // nil keeps the existing lines
}

// Update patches the invoice and, when Lines is set, replaces the line items.
// The replacement reverses the old stock deltas in full before the new ones
// are applied, so a concurrent reader never observes both generations at once.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	orig := *inv

	if params.CustomerID != nil {
		inv.CustomerID = *params.CustomerID
	}

	if params.Date != nil {
		inv.Date = *params.Date
	}

	if params.DueDate != nil {
		inv.DueDate = *params.DueDate
	}

	if params.Notes != nil {
		inv.Notes = *params.Notes
	}

	if params.Lines == nil {
		if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
			return nil, fmt.Errorf("updating invoice: %w", err)
		}

		return inv, nil
	}

	if err := validateQuantities(params.Lines); err != nil {
		return nil, err
	}

	oldLines, err := s.repo.GetLineItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading invoice lines: %w", err)
	}

	newLines := buildLines(params.Lines)
	totals := document.CalculateTotals(calcLines(params.Lines))
	inv.Subtotal = totals.Subtotal
	inv.Discount = totals.Discount
	inv.Tax = totals.Tax
	inv.Total = totals.Total

	var undo compensate.Stack

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("updating invoice: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.UpdateInvoice(ctx, &orig) })

	if err := s.repo.DeleteLineItems(ctx, id); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("removing old invoice lines: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.CreateLineItems(ctx, id, oldLines) })

	if err := s.repo.CreateLineItems(ctx, id, newLines); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("creating invoice lines: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.DeleteLineItems(ctx, id) })

	// Reversal of the old deltas must complete before the new deductions.
	reversal := stockDeltas(oldLines, +1)

	applied, err := s.ledger.Apply(ctx, reversal)
	if err != nil {
		s.revertDeltas(ctx, applied, inv.Number)
		undo.Unwind(ctx)

		return nil, fmt.Errorf("reversing stock deltas: %w", err)
	}

	undo.Push(func(ctx context.Context) error {
		_, err := s.ledger.Apply(ctx, inventory.Invert(reversal))
		return err
	})

	applied, err = s.ledger.Apply(ctx, stockDeltas(newLines, -1))
	if err != nil {
		s.revertDeltas(ctx, applied, inv.Number)
		undo.Unwind(ctx)

		return nil, fmt.Errorf("deducting stock: %w", err)
	}

	return inv, nil
}

// UpdateStatus persists an allowed transition. Overdue is derived from the
// due date and is rejected as a target.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return err
	}

	if !inv.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inv.Status, status)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

// Delete removes the invoice and its lines. Stock deducted at creation is
// deliberately not restored; the skipped reversal is logged every time so the
// gap stays visible in operation.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return err
	}

	slog.Warn("invoice deleted without restoring stock",
		"invoice", inv.Number, "invoice_id", id)

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

func (s *Service) GetLineItems(ctx context.Context, id uuid.UUID) ([]LineItem, error) {
	return s.repo.GetLineItems(ctx, id)
}

// CreateConverted persists an invoice derived from another document with its
// number, totals and line totals already fixed. Nothing is recomputed and no
// stock moves; the skipped deduction is logged as a known inconsistency of
// the conversion path.
func (s *Service) CreateConverted(ctx context.Context, inv *Invoice, lines []LineItem) (*Invoice, error) {
	var undo compensate.Stack

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.DeleteInvoice(ctx, inv.ID) })

	if err := s.repo.CreateLineItems(ctx, inv.ID, lines); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("creating invoice lines: %w", err)
	}

	slog.Warn("converted invoice created without stock deduction",
		"invoice", inv.Number)

	return inv, nil
}

// revertDeltas compensates a partially applied ledger batch. A failing
// reversal leaves stock genuinely inconsistent, which is reported distinctly
// from the original failure.
func (s *Service) revertDeltas(ctx context.Context, applied []inventory.StockDelta, number string) {
	if len(applied) == 0 {
		return
	}

	if _, err := s.ledger.Apply(ctx, inventory.Invert(applied)); err != nil {
		slog.Error("stock ledger inconsistent after failed invoice write",
			"invoice", number, "applied", len(applied), "error", err)
	}
}

func (s *Service) checkStock(ctx context.Context, lines []LineParams) error {
	for _, l := range lines {
		it, err := s.resolveItem(ctx, l)
		if err != nil {
			return fmt.Errorf("resolving item %q: %w", l.ItemName, err)
		}

		if it == nil {
			continue // not tracked in inventory
		}

		if it.Stock < l.Quantity {
			return fmt.Errorf("%w for %q: requested %d, available %d",
				ErrInsufficientStock, it.Name, l.Quantity, it.Stock)
		}
	}

	return nil
}

func (s *Service) resolveItem(ctx context.Context, l LineParams) (*item.Item, error) {
	if l.ItemID != nil {
		it, err := s.catalog.GetItem(ctx, *l.ItemID)
		if err == nil {
			return it, nil
		}

		if !errors.Is(err, item.ErrNotFound) {
			return nil, err
		}
	}

	if l.ItemName == "" {
		return nil, nil
	}

	it, err := s.catalog.GetItemByName(ctx, l.ItemName)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return it, nil
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

func stockDeltas(lines []LineItem, sign int64) []inventory.StockDelta {
	deltas := make([]inventory.StockDelta, len(lines))

	for i, l := range lines {
		deltas[i] = inventory.StockDelta{
			ItemID:   l.ItemID,
			ItemName: l.ItemName,
			Quantity: sign * l.Quantity,
		}
	}

	return deltas
}
