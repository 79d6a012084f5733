// Package compensate implements the unwind half of a compensation workflow:
// multi-record writes that cannot share a transaction push an inverse for
// every applied step, and a later failure runs the inverses in reverse order
// before the error is surfaced.
package compensate

import (
	"context"
	"log/slog"
)

type Stack struct {
	steps []func(context.Context) error
}

// Push records the inverse of a step that just succeeded.
func (s *Stack) Push(step func(context.Context) error) {
	s.steps = append(s.steps, step)
}

// Unwind runs the recorded inverses newest-first. An inverse that fails
// cannot be retried here; it is logged so the record can be repaired, and the
// remaining inverses still run.
func (s *Stack) Unwind(ctx context.Context) {
	for i := len(s.steps) - 1; i >= 0; i-- {
		if err := s.steps[i](ctx); err != nil {
			slog.Error("compensation step failed, records may be inconsistent", "error", err)
		}
	}

	s.steps = nil
}
