package numerator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "pgcledger/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences: one counter per (scope, prefix, year).
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
	lastArgs []any
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastArgs = args
	if m.err != nil {
		return &mockRow{err: m.err}
	}
	key := fmt.Sprint(args[0], "|", args[1], "|", args[2])
	if len(args) == 4 {
		m.counters[key] = args[3].(int64)
	} else {
		m.counters[key]++
	}
	return &mockRow{val: m.counters[key]}
}

func TestGetNextNumber_Sequential(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("tenant-a", corenumerator.PrefixInvoice)
	march := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	first, err := svc.GetNextNumber(ctx, cfg, march)
	require.NoError(t, err)
	assert.Equal(t, "FT/2024/00001", first)

	second, err := svc.GetNextNumber(ctx, cfg, march)
	require.NoError(t, err)
	assert.Equal(t, "FT/2024/00002", second)

	assert.Equal(t, []any{"tenant-a", "FT", 2024}, q.lastArgs)
}

func TestGetNextNumber_IsolatedCounters(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	day := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cfg    corenumerator.Config
		period time.Time
		want   string
	}{
		{"invoice", corenumerator.DefaultConfig("tenant-a", corenumerator.PrefixInvoice), day, "FT/2024/00001"},
		{"purchase", corenumerator.DefaultConfig("tenant-a", corenumerator.PrefixPurchase), day, "CP/2024/00001"},
		{"other tenant", corenumerator.DefaultConfig("tenant-b", corenumerator.PrefixInvoice), day, "FT/2024/00001"},
		{"new year", corenumerator.DefaultConfig("tenant-a", corenumerator.PrefixInvoice), day.AddDate(0, 0, 1), "FT/2025/00001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetNextNumber(ctx, tt.cfg, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetNextNumber_NeverReset(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	cfg := corenumerator.Config{Scope: "tenant-a", Prefix: "ADJ", PadWidth: 3, ResetPeriod: "never"}

	got, err := svc.GetNextNumber(context.Background(), cfg, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "ADJ/001", got)
	assert.Equal(t, 0, q.lastArgs[2])
}

func TestSetNextNumber(t *testing.T) {
	q := newMockQuerier()
	svc := NewWithQuerierFunc(func(context.Context) Querier { return q })
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("tenant-a", corenumerator.PrefixGeneral)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, day, 120))
	got, err := svc.GetNextNumber(ctx, cfg, day)
	require.NoError(t, err)
	assert.Equal(t, "LC/2024/00121", got)

	assert.Error(t, svc.SetNextNumber(ctx, cfg, day, -1))
}

func TestGetNextNumber_Error(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection reset")
	svc := New(q)

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("t", "FT"), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, q.err)
	assert.Contains(t, err.Error(), "t:FT/")

	var nilSvc *Service
	_, err = nilSvc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("t", "FT"), time.Now())
	assert.Error(t, err)
}
