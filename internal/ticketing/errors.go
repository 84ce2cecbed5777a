// Package ticketing holds the inventory, pricing and waitlist core of
// the platform.  Everything in this package is storage-agnostic: sale
// status resolution, discount validation and pricing are pure
// functions, the waitlist queue operates on in-memory entries, and the
// inventory ledger is an interface with an in-memory implementation
// here and a SQL-backed one in the repository layer.
package ticketing

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected business conditions.  Handlers map
// these onto HTTP statuses; none of them should abort a transaction.
var (
	// ErrCodeInactive is returned when a promo code has been switched off.
	ErrCodeInactive = errors.New("promo code inactive")
	// ErrCodeOutOfWindow is returned when a promo code is used before its
	// start or after its end instant.
	ErrCodeOutOfWindow = errors.New("promo code not currently valid")
	// ErrCodeTierMismatch is returned when a promo code restricted to one
	// tier is applied to a different tier.
	ErrCodeTierMismatch = errors.New("promo code not valid for this tier")
	// ErrCodeInvalidValue is returned for zero, negative or out-of-range
	// discount values, and for unknown discount types.
	ErrCodeInvalidValue = errors.New("promo code has an invalid discount value")
	// ErrEntryNotFound is returned by queue operations addressing an
	// entry that is not in the queue.
	ErrEntryNotFound = errors.New("waitlist entry not found")
	// ErrUnknownTier is returned when a ledger or coordinator operation
	// references a tier it has never been told about.
	ErrUnknownTier = errors.New("unknown ticket tier")
)

// InsufficientCapacityError is returned by Ledger.Reserve when a tier
// cannot absorb the requested quantity.  It carries the remaining
// count so callers can offer a reduced quantity.  Capacity exhaustion
// is a fact, not a transient fault — it must never be retried blindly.
type InsufficientCapacityError struct {
	TierID    uint64
	Requested int
	Remaining int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity on tier %d: requested %d, remaining %d",
		e.TierID, e.Requested, e.Remaining)
}

// PositionConflictError signals that waitlist renumbering failed to
// produce a dense 1..N sequence.  This is a programming error, not a
// user-facing condition; callers should abort the surrounding
// transaction rather than attempt recovery.
type PositionConflictError struct {
	EventID  uint64
	Position int
	Index    int
}

func (e *PositionConflictError) Error() string {
	return fmt.Sprintf("waitlist position conflict on event %d: position %d at index %d",
		e.EventID, e.Position, e.Index)
}
