package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"checkparser/models"

	"github.com/stretchr/testify/require"
)

var (
	_ Store    = (*Memory)(nil)
	_ Reporter = (*Memory)(nil)
	_ Store    = (*Gorm)(nil)
	_ Reporter = (*Gorm)(nil)
)

func TestMemoryCreateGetList(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	a := &models.Check{CheckNumber: "1001", AmountNumeric: 12.5}
	b := &models.Check{AmountNumeric: 3}
	require.NoError(t, m.Create(ctx, a))
	require.NoError(t, m.Create(ctx, b))
	require.Equal(t, uint(1), a.ID)
	require.Equal(t, uint(2), b.ID)
	require.False(t, a.CreatedAt.IsZero())
	require.Regexp(t, `^CHK-`, b.CheckNumber)

	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, *a, *got)

	_, err = m.Get(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)

	all, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, uint(2), all[0].ID)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Create(ctx, &models.Check{CheckNumber: "1"}))

	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	got.CheckNumber = "changed"

	again, err := m.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "1", again.CheckNumber)
}

func TestMemoryConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Create(ctx, &models.Check{})
		}()
	}
	wg.Wait()
	all, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 50)
}

func TestMemorySummary(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	clock := time.Date(2025, time.August, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	require.NoError(t, m.Create(ctx, &models.Check{AmountNumeric: 100, FraudDetected: true}))
	require.NoError(t, m.Create(ctx, &models.Check{AmountNumeric: 50, SignatureVerified: true}))
	clock = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.Create(ctx, &models.Check{AmountNumeric: 999}))

	start := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	s, err := m.Summary(ctx, start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Equal(t, MonthSummary{Month: "2025-08", Count: 2, TotalAmount: 150, FraudFlagged: 1, UnverifiedSignature: 1}, s)

	rows, err := m.Between(ctx, start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, uint(1), rows[0].ID)
}

func TestMemoryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory()
	require.ErrorIs(t, m.Create(ctx, &models.Check{}), context.Canceled)
	_, err := m.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
