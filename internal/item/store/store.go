package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invio/internal/item"
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

func scanItem(s scanner) (*item.Item, error) {
	var it item.Item
	if err := s.Scan(
		&it.ID, &it.Name, &it.Description, &it.Price, &it.Stock, &it.MinStock,
		&it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &it, nil
}

const itemColumns = `id, name, description, price, stock, min_stock, created_at, updated_at`

func (s *Store) CreateItem(ctx context.Context, it *item.Item) error {
	query := `
		INSERT INTO items (name, description, price, stock, min_stock, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		it.Name, it.Description, it.Price, it.Stock, it.MinStock,
	).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}

	return nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	it, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, item.ErrNotFound
		}

		return nil, fmt.Errorf("getting item: %w", err)
	}

	return it, nil
}

// GetItemByName returns the first catalog entry with the given name.
func (s *Store) GetItemByName(ctx context.Context, name string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE name = $1 ORDER BY created_at ASC LIMIT 1`

	it, err := scanItem(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, item.ErrNotFound
		}

		return nil, fmt.Errorf("getting item by name: %w", err)
	}

	return it, nil
}

func (s *Store) ListItems(ctx context.Context) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY name ASC`

	return s.list(ctx, query)
}

func (s *Store) ListLowStock(ctx context.Context) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE stock < min_stock ORDER BY stock ASC`

	return s.list(ctx, query)
}

func (s *Store) list(ctx context.Context, query string) ([]*item.Item, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []*item.Item

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		items = append(items, it)
	}

	return items, rows.Err()
}

func (s *Store) UpdateItem(ctx context.Context, it *item.Item) error {
	query := `
		UPDATE items
		SET name = $1, description = $2, price = $3, stock = $4, min_stock = $5, updated_at = NOW()
		WHERE id = $6
	`

	_, err := s.db.ExecContext(ctx, query,
		it.Name, it.Description, it.Price, it.Stock, it.MinStock, it.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}

	return nil
}

// AdjustStock applies a signed delta to the stored stock count in a single
// statement, so concurrent adjustments never clobber each other.
func (s *Store) AdjustStock(ctx context.Context, id uuid.UUID, delta int64) error {
	query := `
		UPDATE items
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("adjusting stock: %w", err)
	}

	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM items WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	return nil
}
