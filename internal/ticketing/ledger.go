package ticketing

import (
	"context"
	"fmt"
	"sync"
)

// Reservation is the ephemeral result of a successful ledger reserve.
// It is not persisted on its own; the sold count on the tier row is
// the durable record.
type Reservation struct {
	TierID   uint64
	Quantity int
}

// Ledger is the single source of truth for sold counts per tier.
// Reserve must be atomic with respect to concurrent reserves on the
// same tier: the read-check-write sequence is indivisible, so two
// concurrent calls for the last remaining unit can never both
// succeed.  Reserve either succeeds or fails fast with
// *InsufficientCapacityError — there is no waiting for capacity
// inside the ledger; waiting is modeled by the waitlist queue.
// Different tiers are independent and may be reserved concurrently.
type Ledger interface {
	Reserve(ctx context.Context, tierID uint64, quantity int) (Reservation, error)
	Release(ctx context.Context, tierID uint64, quantity int) error
}

// memTier carries the capacity state of one tier.  Each tier has its
// own mutex so reservations on different tiers never contend.
type memTier struct {
	mu       sync.Mutex
	quantity *int // nil = unlimited
	sold     int
}

// MemoryLedger is the in-process Ledger implementation.  It backs the
// core tests and the conctest command; production traffic goes through
// the SQL-backed ledger in the repository layer, which enforces the
// same contract with a conditional UPDATE.
type MemoryLedger struct {
	mu    sync.RWMutex
	tiers map[uint64]*memTier
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{tiers: make(map[uint64]*memTier)}
}

// AddTier registers a tier with the given capacity (nil = unlimited)
// and current sold count.  Re-adding an existing tier replaces its
// state.
func (l *MemoryLedger) AddTier(tierID uint64, quantity *int, sold int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var q *int
	if quantity != nil {
		v := *quantity
		q = &v
	}
	l.tiers[tierID] = &memTier{quantity: q, sold: sold}
}

func (l *MemoryLedger) tier(tierID uint64) (*memTier, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tiers[tierID]
	if !ok {
		return nil, ErrUnknownTier
	}
	return t, nil
}

// Reserve atomically increments the tier's sold count if capacity
// allows, or returns *InsufficientCapacityError with the remaining
// count.  Unlimited tiers always succeed.
func (l *MemoryLedger) Reserve(ctx context.Context, tierID uint64, quantity int) (Reservation, error) {
	if quantity < 1 {
		return Reservation{}, fmt.Errorf("reserve: quantity must be positive, got %d", quantity)
	}
	t, err := l.tier(tierID)
	if err != nil {
		return Reservation{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quantity != nil && t.sold+quantity > *t.quantity {
		remaining := *t.quantity - t.sold
		if remaining < 0 {
			remaining = 0
		}
		return Reservation{}, &InsufficientCapacityError{
			TierID:    tierID,
			Requested: quantity,
			Remaining: remaining,
		}
	}
	t.sold += quantity
	return Reservation{TierID: tierID, Quantity: quantity}, nil
}

// Release reverses a reservation.  The sold count never goes below
// zero, so releasing more than was reserved is clamped rather than
// propagated.
func (l *MemoryLedger) Release(ctx context.Context, tierID uint64, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("release: quantity must be positive, got %d", quantity)
	}
	t, err := l.tier(tierID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sold -= quantity
	if t.sold < 0 {
		t.sold = 0
	}
	return nil
}

// SoldCount reports the current sold count of a tier.  It exists for
// tests and diagnostics.
func (l *MemoryLedger) SoldCount(tierID uint64) (int, error) {
	t, err := l.tier(tierID)
	if err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sold, nil
}
