package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invio/internal/customer"
	"github.com/MrJamesThe3rd/invio/internal/quotation"
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

const selectQuotationColumns = `
	q.id, q.number, q.customer_id, q.date, q.valid_until,
	q.subtotal, q.discount, q.tax, q.total, q.notes, q.payment_terms, q.status,
	q.created_at, q.updated_at,
	c.name, c.address, c.phone, c.email
`

func scanQuotation(s scanner) (*quotation.Quotation, error) {
	var (
		q quotation.Quotation
		c customer.Customer
	)

	if err := s.Scan(
		&q.ID, &q.Number, &q.CustomerID, &q.Date, &q.ValidUntil,
		&q.Subtotal, &q.Discount, &q.Tax, &q.Total, &q.Notes, &q.PaymentTerms, &q.Status,
		&q.CreatedAt, &q.UpdatedAt,
		&c.Name, &c.Address, &c.Phone, &c.Email,
	); err != nil {
		return nil, err
	}

	c.ID = q.CustomerID
	q.Customer = &c

	return &q, nil
}

func (s *Store) CreateQuotation(ctx context.Context, q *quotation.Quotation) error {
	query := `
		INSERT INTO quotations (number, customer_id, date, valid_until, subtotal, discount, tax, total, notes, payment_terms, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		q.Number,
		q.CustomerID,
		q.Date,
		q.ValidUntil,
		q.Subtotal,
		q.Discount,
		q.Tax,
		q.Total,
		q.Notes,
		q.PaymentTerms,
		q.Status,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating quotation: %w", err)
	}

	return nil
}

func (s *Store) GetQuotation(ctx context.Context, id uuid.UUID) (*quotation.Quotation, error) {
	query := `SELECT ` + selectQuotationColumns + `
		FROM quotations q
		JOIN customers c ON q.customer_id = c.id
		WHERE q.id = $1`

	q, err := scanQuotation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, quotation.ErrNotFound
		}

		return nil, fmt.Errorf("getting quotation: %w", err)
	}

	return q, nil
}

func (s *Store) ListQuotations(ctx context.Context) ([]*quotation.Quotation, error) {
	query := `SELECT ` + selectQuotationColumns + `
		FROM quotations q
		JOIN customers c ON q.customer_id = c.id
		ORDER BY q.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing quotations: %w", err)
	}
	defer rows.Close()

	var quotations []*quotation.Quotation

	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quotation: %w", err)
		}

		quotations = append(quotations, q)
	}

	return quotations, rows.Err()
}

func (s *Store) UpdateQuotation(ctx context.Context, q *quotation.Quotation) error {
	query := `
		UPDATE quotations
		SET customer_id = $1, date = $2, valid_until = $3, subtotal = $4, discount = $5,
		    tax = $6, total = $7, notes = $8, payment_terms = $9, updated_at = NOW()
		WHERE id = $10
	`

	_, err := s.db.ExecContext(ctx, query,
		q.CustomerID,
		q.Date,
		q.ValidUntil,
		q.Subtotal,
		q.Discount,
		q.Tax,
		q.Total,
		q.Notes,
		q.PaymentTerms,
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("updating quotation: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status quotation.Status) error {
	query := `
		UPDATE quotations
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating quotation status: %w", err)
	}

	return nil
}

func (s *Store) DeleteQuotation(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM quotations WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting quotation: %w", err)
	}

	return nil
}

func (s *Store) CreateLineItems(ctx context.Context, quotationID uuid.UUID, lines []quotation.LineItem) error {
	query := `
		INSERT INTO quotation_items (quotation_id, item_id, item_name, description, quantity, unit_price, discount, tax_rate, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	for i := range lines {
		lines[i].QuotationID = quotationID

		err := s.db.QueryRowContext(ctx, query,
			quotationID,
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
			return fmt.Errorf("creating quotation line %d: %w", i, err)
		}
	}

	return nil
}

func (s *Store) GetLineItems(ctx context.Context, quotationID uuid.UUID) ([]quotation.LineItem, error) {
	query := `
		SELECT id, quotation_id, item_id, item_name, description, quantity, unit_price, discount, tax_rate, total
		FROM quotation_items
		WHERE quotation_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, quotationID)
	if err != nil {
		return nil, fmt.Errorf("listing quotation lines: %w", err)
	}
	defer rows.Close()

	var lines []quotation.LineItem

	for rows.Next() {
		var l quotation.LineItem
		if err := rows.Scan(
			&l.ID, &l.QuotationID, &l.ItemID, &l.ItemName, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.Discount, &l.TaxRate, &l.Total,
		); err != nil {
			return nil, fmt.Errorf("scanning quotation line: %w", err)
		}

		lines = append(lines, l)
	}

	return lines, rows.Err()
}

func (s *Store) DeleteLineItems(ctx context.Context, quotationID uuid.UUID) error {
	query := `DELETE FROM quotation_items WHERE quotation_id = $1`

	_, err := s.db.ExecContext(ctx, query, quotationID)
	if err != nil {
		return fmt.Errorf("deleting quotation lines: %w", err)
	}

	return nil
}
