package ticketing

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.AddTier(1, intPtr(10), 0)

	res, err := l.Reserve(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, Reservation{TierID: 1, Quantity: 4}, res)

	sold, err := l.SoldCount(1)
	require.NoError(t, err)
	assert.Equal(t, 4, sold)

	// Release after reserve restores the pre-reserve count exactly.
	require.NoError(t, l.Release(ctx, 1, 4))
	sold, err = l.SoldCount(1)
	require.NoError(t, err)
	assert.Equal(t, 0, sold)
}

func TestMemoryLedgerInsufficientCapacity(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.AddTier(1, intPtr(2), 0)

	_, err := l.Reserve(ctx, 1, 1)
	require.NoError(t, err)
	_, err = l.Reserve(ctx, 1, 1)
	require.NoError(t, err)

	_, err = l.Reserve(ctx, 1, 1)
	var capErr *InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 0, capErr.Remaining)
	assert.Equal(t, 1, capErr.Requested)
	assert.Equal(t, uint64(1), capErr.TierID)

	// A multi-unit request reports how many units are actually left.
	l.AddTier(2, intPtr(5), 3)
	_, err = l.Reserve(ctx, 2, 4)
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Remaining)
}

func TestMemoryLedgerUnlimitedTier(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.AddTier(1, nil, 0)

	for i := 0; i < 100; i++ {
		_, err := l.Reserve(ctx, 1, 5)
		require.NoError(t, err)
	}
	sold, err := l.SoldCount(1)
	require.NoError(t, err)
	assert.Equal(t, 500, sold)
}

func TestMemoryLedgerReleaseFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.AddTier(1, intPtr(10), 2)

	require.NoError(t, l.Release(ctx, 1, 5))
	sold, err := l.SoldCount(1)
	require.NoError(t, err)
	assert.Equal(t, 0, sold)
}

func TestMemoryLedgerUnknownTier(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	_, err := l.Reserve(ctx, 99, 1)
	assert.ErrorIs(t, err, ErrUnknownTier)
	assert.ErrorIs(t, l.Release(ctx, 99, 1), ErrUnknownTier)
}

// N concurrent single-unit reserves against capacity C must yield
// exactly C successes and N-C capacity failures, with the final sold
// count equal to C.  This is the load-bearing property of the whole
// subsystem.
func TestMemoryLedgerConcurrentReserves(t *testing.T) {
	const (
		workers  = 50
		capacity = 10
	)

	ctx := context.Background()
	l := NewMemoryLedger()
	l.AddTier(1, intPtr(capacity), 0)

	var wg sync.WaitGroup
	var successes, capacityFails int64

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := l.Reserve(ctx, 1, 1)
			if err == nil {
				atomic.AddInt64(&successes, 1)
				return
			}
			var capErr *InsufficientCapacityError
			if assert.ErrorAs(t, err, &capErr) {
				atomic.AddInt64(&capacityFails, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(capacity), successes)
	assert.Equal(t, int64(workers-capacity), capacityFails)

	sold, err := l.SoldCount(1)
	require.NoError(t, err)
	assert.Equal(t, capacity, sold)
}

// Reserves on different tiers are independent; hammering two tiers at
// once must not let either exceed its own capacity.
func TestMemoryLedgerTiersAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.AddTier(1, intPtr(5), 0)
	l.AddTier(2, intPtr(7), 0)

	var wg sync.WaitGroup
	wg.Add(40)
	for i := 0; i < 20; i++ {
		go func() { defer wg.Done(); _, _ = l.Reserve(ctx, 1, 1) }()
		go func() { defer wg.Done(); _, _ = l.Reserve(ctx, 2, 1) }()
	}
	wg.Wait()

	sold1, err := l.SoldCount(1)
	require.NoError(t, err)
	sold2, err := l.SoldCount(2)
	require.NoError(t, err)
	assert.Equal(t, 5, sold1)
	assert.Equal(t, 7, sold2)
}
