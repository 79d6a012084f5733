package purchaseorder

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
)

const numberPrefix = "PO"

var (
	ErrNotFound          = errors.New("purchase order not found")
	ErrNoVendor          = errors.New("purchase order requires a vendor")
	ErrInvalidQuantity   = errors.New("line quantity must be positive")
	ErrInvalidStatus     = errors.New("invalid purchase order status")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrCompletedLocked guards received orders: editing one would let the
	// recorded receipt drift from the stock already credited.
	ErrCompletedLocked = errors.New("cannot edit a received purchase order")
)

type Repository interface {
	CreatePurchaseOrder(ctx context.Context, po *PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context) ([]*PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, po *PurchaseOrder) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	DeletePurchaseOrder(ctx context.Context, id uuid.UUID) error

	CreateLineItems(ctx context.Context, poID uuid.UUID, lines []LineItem) error
	GetLineItems(ctx context.Context, poID uuid.UUID) ([]LineItem, error)
	DeleteLineItems(ctx context.Context, poID uuid.UUID) error
}

type Sequencer interface {
	Next(ctx context.Context, prefix string, now time.Time) (string, error)
}

type Ledger interface {
	Apply(ctx context.Context, deltas []inventory.StockDelta) ([]inventory.StockDelta, error)
}

type Service struct {
	repo   Repository
	seq    Sequencer
	ledger Ledger
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, seq Sequencer, ledger Ledger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		seq:    seq,
		ledger: ledger,
		now:    time.Now,
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
}

type CreateParams struct {
	VendorID         uuid.UUID
	Date             time.Time // zero value means today
	ExpectedDelivery time.Time // zero value means Date + 14 days
	Notes            string
	Lines            []LineParams
}

// Create assigns a number, computes totals and persists the order pending.
// Creation never moves stock; goods count only once received.
func (s *Service) Create(ctx context.Context, params CreateParams) (*PurchaseOrder, error) {
	if params.VendorID == uuid.Nil {
		return nil, ErrNoVendor
	}

	if err := validateQuantities(params.Lines); err != nil {
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

	expected := params.ExpectedDelivery
	if expected.IsZero() {
		expected = date.AddDate(0, 0, 14)
	}

	lines := buildLines(params.Lines)
	totals := document.CalculatePurchaseTotals(calcLines(params.Lines))

	po := &PurchaseOrder{
		Number:           number,
		VendorID:         params.VendorID,
		Date:             date,
		ExpectedDelivery: expected,
		Subtotal:         totals.Subtotal,
		Tax:              totals.Tax,
		Total:            totals.Total,
		Notes:            params.Notes,
		Status:           StatusPending,
	}

	var undo compensate.Stack

	if err := s.repo.CreatePurchaseOrder(ctx, po); err != nil {
		return nil, fmt.Errorf("creating purchase order: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.DeletePurchaseOrder(ctx, po.ID) })

	if err := s.repo.CreateLineItems(ctx, po.ID, lines); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("creating purchase order lines: %w", err)
	}

	return po, nil
}

type UpdateParams struct {
	VendorID         *uuid.UUID
	Date             *time.Time
	ExpectedDelivery *time.Time
	Notes            *string
	Lines            []LineParams // nil keeps the existing lines
}

// Update patches the order and, when Lines is set, replaces the line items.
// A completed order is locked: nothing is written and ErrCompletedLocked is
// returned. Replacing pending lines moves no stock.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*PurchaseOrder, error) {
	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if po.Status == StatusCompleted {
		return nil, ErrCompletedLocked
	}

	orig := *po

	if params.VendorID != nil {
		po.VendorID = *params.VendorID
	}

	if params.Date != nil {
		po.Date = *params.Date
	}

	if params.ExpectedDelivery != nil {
		po.ExpectedDelivery = *params.ExpectedDelivery
	}

	if params.Notes != nil {
		po.Notes = *params.Notes
	}

	if params.Lines == nil {
		if err := s.repo.UpdatePurchaseOrder(ctx, po); err != nil {
			return nil, fmt.Errorf("updating purchase order: %w", err)
		}

		return po, nil
	}

	if err := validateQuantities(params.Lines); err != nil {
		return nil, err
	}

	oldLines, err := s.repo.GetLineItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading purchase order lines: %w", err)
	}

	totals := document.CalculatePurchaseTotals(calcLines(params.Lines))
	po.Subtotal = totals.Subtotal
	po.Tax = totals.Tax
	po.Total = totals.Total

	var undo compensate.Stack

	if err := s.repo.UpdatePurchaseOrder(ctx, po); err != nil {
		return nil, fmt.Errorf("updating purchase order: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.UpdatePurchaseOrder(ctx, &orig) })

	if err := s.repo.DeleteLineItems(ctx, id); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("removing old purchase order lines: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.CreateLineItems(ctx, id, oldLines) })

	if err := s.repo.CreateLineItems(ctx, id, buildLines(params.Lines)); err != nil {
		undo.Unwind(ctx)
		return nil, fmt.Errorf("creating purchase order lines: %w", err)
	}

	return po, nil
}

// UpdateStatus persists an allowed transition and moves stock when the
// completed boundary is crossed: entering completed credits every line's
// quantity, leaving completed debits it back. The status write lands first;
// a ledger failure reverts it along with any partial deltas.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.storable() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return err
	}

	if status == po.Status {
		return nil
	}

	if !po.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, po.Status, status)
	}

	var undo compensate.Stack

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("updating purchase order status: %w", err)
	}

	undo.Push(func(ctx context.Context) error { return s.repo.UpdateStatus(ctx, id, po.Status) })

	var sign int64

	switch {
	case po.Status != StatusCompleted && status == StatusCompleted:
		sign = +1 // receipt: credit stock
	case po.Status == StatusCompleted && status != StatusCompleted:
		sign = -1 // un-receipt: take the credit back
	default:
		return nil
	}

	lines, err := s.repo.GetLineItems(ctx, id)
	if err != nil {
		undo.Unwind(ctx)
		return fmt.Errorf("loading purchase order lines: %w", err)
	}

	applied, err := s.ledger.Apply(ctx, stockDeltas(lines, sign))
	if err != nil {
		if len(applied) > 0 {
			if _, invErr := s.ledger.Apply(ctx, inventory.Invert(applied)); invErr != nil {
				slog.Error("stock ledger inconsistent after failed status change",
					"purchase_order", po.Number, "applied", len(applied), "error", invErr)
			}
		}

		undo.Unwind(ctx)

		return fmt.Errorf("applying stock deltas: %w", err)
	}

	return nil
}

// Delete removes the order and its lines. Stock credited by a completed
// order is not reversed on delete; that is logged so the gap stays visible.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeletePurchaseOrder(ctx, id); err != nil {
		return err
	}

	if po.Status == StatusCompleted {
		slog.Warn("completed purchase order deleted without reversing stock credit",
			"purchase_order", po.Number, "po_id", id)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error) {
	return s.repo.GetPurchaseOrder(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*PurchaseOrder, error) {
	return s.repo.ListPurchaseOrders(ctx)
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
			Total: document.PurchaseLineTotal(document.Line{
				Quantity:  p.Quantity,
				UnitPrice: p.UnitPrice,
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
