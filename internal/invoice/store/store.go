package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invio/internal/customer"
	"github.com/MrJamesThe3rd/invio/internal/invoice"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	i.id, i.number, i.customer_id, i.date, i.due_date,
	i.subtotal, i.discount, i.tax, i.total, i.notes, i.status,
	i.created_at, i.updated_at,
	c.name, c.address, c.phone, c.email
`

// scanInvoice reads an invoice row joined with its customer.
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var (
		inv invoice.Invoice
		c   customer.Customer
	)

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.CustomerID, &inv.Date, &inv.DueDate,
		&inv.Subtotal, &inv.Discount, &inv.Tax, &inv.Total, &inv.Notes, &inv.Status,
		&inv.CreatedAt, &inv.UpdatedAt,
		&c.Name, &c.Address, &c.Phone, &c.Email,
	); err != nil {
		return nil, err
	}

	c.ID = inv.CustomerID
	inv.Customer = &c

	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (number, customer_id, date, due_date, subtotal, discount, tax, total, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inv.Number,
		inv.CustomerID,
		inv.Date,
		inv.DueDate,
		inv.Subtotal,
		inv.Discount,
		inv.Tax,
		inv.Total,
		inv.Notes,
		inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		JOIN customers c ON i.customer_id = c.id
		WHERE i.id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		JOIN customers c ON i.customer_id = c.id
		ORDER BY i.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET customer_id = $1, date = $2, due_date = $3, subtotal = $4, discount = $5,
		    tax = $6, total = $7, notes = $8, updated_at = NOW()
		WHERE id = $9
	`

	_, err := s.db.ExecContext(ctx, query,
		inv.CustomerID,
		inv.Date,
		inv.DueDate,
		inv.Subtotal,
		inv.Discount,
		inv.Tax,
		inv.Total,
		inv.Notes,
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status invoice.Status) error {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}

	return nil
}

// DeleteInvoice removes the invoice; its lines go with it via the cascading
// foreign key.
func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM invoices WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	return nil
}

func (s *Store) CreateLineItems(ctx context.Context, invoiceID uuid.UUID, lines []invoice.LineItem) error {
	query := `
		INSERT INTO invoice_items (invoice_id, item_id, item_name, description, quantity, unit_price, discount, tax_rate, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	for i := range lines {
		lines[i].InvoiceID = invoiceID

		err := s.db.QueryRowContext(ctx, query,
			invoiceID,
			lines[i].ItemID,
			lines[i].ItemName,
			lines[i].Description,
			lines[i].Quantity,
			lines[i].UnitPrice,
			lines[i].Discount,
			lines[i].TaxRate,
			lines[i].Total,
		).Scan(&lines[i].ID)
		if err != nil {
			return fmt.Errorf("creating invoice line %d: %w", i, err)
		}
	}

	return nil
}

func (s *Store) GetLineItems(ctx context.Context, invoiceID uuid.UUID) ([]invoice.LineItem, error) {
	query := `
		SELECT id, invoice_id, item_id, item_name, description, quantity, unit_price, discount, tax_rate, total
		FROM invoice_items
		WHERE invoice_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []invoice.LineItem

	for rows.Next() {
		var l invoice.LineItem
		if err := rows.Scan(
			&l.ID, &l.InvoiceID, &l.ItemID, &l.ItemName, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.Discount, &l.TaxRate, &l.Total,
		); err != nil {
			return nil, fmt.Errorf("scanning invoice line: %w", err)
		}

		lines = append(lines, l)
	}

	return lines, rows.Err()
}

func (s *Store) DeleteLineItems(ctx context.Context, invoiceID uuid.UUID) error {
	query := `DELETE FROM invoice_items WHERE invoice_id = $1`

	_, err := s.db.ExecContext(ctx, query, invoiceID)
	if err != nil {
		return fmt.Errorf("deleting invoice lines: %w", err)
	}

	return nil
}
