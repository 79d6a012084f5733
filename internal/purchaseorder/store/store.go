package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invio/internal/customer"
	"github.com/MrJamesThe3rd/invio/internal/purchaseorder"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectPOColumns = `
	p.id, p.number, p.vendor_id, p.date, p.expected_delivery,
	p.subtotal, p.tax, p.total, p.notes, p.status,
	p.created_at, p.updated_at,
	c.name, c.address, c.phone, c.email
`

func scanPurchaseOrder(s scanner) (*purchaseorder.PurchaseOrder, error) {
	var (
		po purchaseorder.PurchaseOrder
		c  customer.Customer
	)

	if err := s.Scan(
		&po.ID, &po.Number, &po.VendorID, &po.Date, &po.ExpectedDelivery,
		&po.Subtotal, &po.Tax, &po.Total, &po.Notes, &po.Status,
		&po.CreatedAt, &po.UpdatedAt,
		&c.Name, &c.Address, &c.Phone, &c.Email,
	); err != nil {
		return nil, err
	}

	c.ID = po.VendorID
	po.Vendor = &c

	return &po, nil
}

func (s *Store) CreatePurchaseOrder(ctx context.Context, po *purchaseorder.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (number, vendor_id, date, expected_delivery, subtotal, tax, total, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		po.Number,
		po.VendorID,
		po.Date,
		po.ExpectedDelivery,
		po.Subtotal,
		po.Tax,
		po.Total,
		po.Notes,
		po.Status,
	).Scan(&po.ID, &po.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating purchase order: %w", err)
	}

	return nil
}

func (s *Store) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*purchaseorder.PurchaseOrder, error) {
	query := `SELECT ` + selectPOColumns + `
		FROM purchase_orders p
		JOIN customers c ON p.vendor_id = c.id
		WHERE p.id = $1`

	po, err := scanPurchaseOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, purchaseorder.ErrNotFound
		}

		return nil, fmt.Errorf("getting purchase order: %w", err)
	}

	return po, nil
}

func (s *Store) ListPurchaseOrders(ctx context.Context) ([]*purchaseorder.PurchaseOrder, error) {
	query := `SELECT ` + selectPOColumns + `
		FROM purchase_orders p
		JOIN customers c ON p.vendor_id = c.id
		ORDER BY p.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []*purchaseorder.PurchaseOrder

	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning purchase order: %w", err)
		}

		orders = append(orders, po)
	}

	return orders, rows.Err()
}

func (s *Store) UpdatePurchaseOrder(ctx context.Context, po *purchaseorder.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET vendor_id = $1, date = $2, expected_delivery = $3, subtotal = $4,
		    tax = $5, total = $6, notes = $7, updated_at = NOW()
		WHERE id = $8
	`

	_, err := s.db.ExecContext(ctx, query,
		po.VendorID,
		po.Date,
		po.ExpectedDelivery,
		po.Subtotal,
		po.Tax,
		po.Total,
		po.Notes,
		po.ID,
	)
	if err != nil {
		return fmt.Errorf("updating purchase order: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status purchaseorder.Status) error {
	query := `
		UPDATE purchase_orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating purchase order status: %w", err)
	}

	return nil
}

func (s *Store) DeletePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM purchase_orders WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting purchase order: %w", err)
	}

	return nil
}

func (s *Store) CreateLineItems(ctx context.Context, poID uuid.UUID, lines []purchaseorder.LineItem) error {
	query := `
		INSERT INTO purchase_order_items (po_id, item_id, item_name, description, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	for i := range lines {
		lines[i].POID = poID

		err := s.db.QueryRowContext(ctx, query,
			poID,
			lines[i].ItemID,
			lines[i].ItemName,
			lines[i].Description,
			lines[i].Quantity,
			lines[i].UnitPrice,
			lines[i].Total,
		).Scan(&lines[i].ID)
		if err != nil {
			return fmt.Errorf("creating purchase order line %d: %w", i, err)
		}
	}

	return nil
}

func (s *Store) GetLineItems(ctx context.Context, poID uuid.UUID) ([]purchaseorder.LineItem, error) {
	query := `
		SELECT id, po_id, item_id, item_name, description, quantity, unit_price, total
		FROM purchase_order_items
		WHERE po_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, poID)
	if err != nil {
		return nil, fmt.Errorf("listing purchase order lines: %w", err)
	}
	defer rows.Close()

	var lines []purchaseorder.LineItem

	for rows.Next() {
		var l purchaseorder.LineItem
		if err := rows.Scan(
			&l.ID, &l.POID, &l.ItemID, &l.ItemName, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.Total,
		); err != nil {
			return nil, fmt.Errorf("scanning purchase order line: %w", err)
		}

		lines = append(lines, l)
	}

	return lines, rows.Err()
}

func (s *Store) DeleteLineItems(ctx context.Context, poID uuid.UUID) error {
	query := `DELETE FROM purchase_order_items WHERE po_id = $1`

	_, err := s.db.ExecContext(ctx, query, poID)
	if err != nil {
		return fmt.Errorf("deleting purchase order lines: %w", err)
	}

	return nil
}
