package sequence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invio/internal/sequence"
)

type fakeRepo struct {
	counters map[string]int64
	err      error
}

func (f *fakeRepo) NextValue(_ context.Context, key string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}

	if f.counters == nil {
		f.counters = make(map[string]int64)
	}

	f.counters[key]++

	return f.counters[key], nil
}

func TestGenerator_Next(t *testing.T) {
	repo := &fakeRepo{}
	gen := sequence.NewGenerator(repo)

	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	got, err := gen.Next(context.Background(), "INV", now)
	require.NoError(t, err)
	assert.Equal(t, "INV/202608/0001", got)

	got, err = gen.Next(context.Background(), "INV", now)
	require.NoError(t, err)
	assert.Equal(t, "INV/202608/0002", got)
}

func TestGenerator_Next_PrefixesIndependent(t *testing.T) {
	repo := &fakeRepo{}
	gen := sequence.NewGenerator(repo)

	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	inv, err := gen.Next(context.Background(), "INV", now)
	require.NoError(t, err)

	quo, err := gen.Next(context.Background(), "QUO", now)
	require.NoError(t, err)

	po, err := gen.Next(context.Background(), "PO", now)
	require.NoError(t, err)

	assert.Equal(t, "INV/202608/0001", inv)
	assert.Equal(t, "QUO/202608/0001", quo)
	assert.Equal(t, "PO/202608/0001", po)
}

func TestGenerator_Next_MonthRollover(t *testing.T) {
	repo := &fakeRepo{}
	gen := sequence.NewGenerator(repo)

	august := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	september := time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC)

	for range 3 {
		_, err := gen.Next(context.Background(), "INV", august)
		require.NoError(t, err)
	}

	got, err := gen.Next(context.Background(), "INV", september)
	require.NoError(t, err)
	assert.Equal(t, "INV/202609/0001", got)

	// The old month's counter keeps its position.
	got, err = gen.Next(context.Background(), "INV", august)
	require.NoError(t, err)
	assert.Equal(t, "INV/202608/0004", got)
}

func TestGenerator_Next_PadsToFourDigits(t *testing.T) {
	repo := &fakeRepo{counters: map[string]int64{"INV-202608": 9998}}
	gen := sequence.NewGenerator(repo)

	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	got, err := gen.Next(context.Background(), "INV", now)
	require.NoError(t, err)
	assert.Equal(t, "INV/202608/9999", got)

	// Counters past 9999 widen instead of wrapping.
	got, err = gen.Next(context.Background(), "INV", now)
	require.NoError(t, err)
	assert.Equal(t, "INV/202608/10000", got)
}

func TestGenerator_Next_RepoError(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	gen := sequence.NewGenerator(repo)

	_, err := gen.Next(context.Background(), "INV", time.Now())
	assert.Error(t, err)
}
