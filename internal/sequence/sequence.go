// Package sequence produces human-readable document numbers of the form
// PREFIX/YYYYMM/NNNN, backed by one monotonically increasing counter per
// prefix and calendar month.
package sequence

import (
	"context"
	"fmt"
	"time"
)

// Repository is the counter storage. NextValue must atomically increment the
// counter for key and return the new value, starting at 1 for an unseen key.
type Repository interface {
	NextValue(ctx context.Context, key string) (int64, error)
}

type Generator struct {
	repo Repository
}

func NewGenerator(repo Repository) *Generator {
	return &Generator{repo: repo}
}

// Next returns the next number for the prefix in the month of now, e.g.
// INV/202608/0001. The counter is persisted before the number is returned,
// so each call advances it exactly once.
func (g *Generator) Next(ctx context.Context, prefix string, now time.Time) (string, error) {
	month := now.Format("200601")

	n, err := g.repo.NextValue(ctx, fmt.Sprintf("%s-%s", prefix, month))
	if err != nil {
		return "", fmt.Errorf("advancing %s counter: %w", prefix, err)
	}

	return fmt.Sprintf("%s/%s/%04d", prefix, month, n), nil
}
