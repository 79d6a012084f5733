package store

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// NextValue increments and returns the counter for key in one statement, so
// concurrent callers each get a distinct value.
func (s *Store) NextValue(ctx context.Context, key string) (int64, error) {
	query := `
		INSERT INTO sequences (key, value)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = sequences.value + 1
		RETURNING value
	`

	var value int64
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		return 0, fmt.Errorf("incrementing sequence %q: %w", key, err)
	}

	return value, nil
}
