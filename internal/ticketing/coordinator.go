package ticketing

import (
	"context"
	"errors"
	"sort"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

// Coordinator orchestrates waitlist promotions against the inventory
// ledger.  It guarantees that no entry is ever promoted into capacity
// that does not exist: the ledger reservation happens first, and only
// a successful reservation removes the entry from the queue.  On
// failure the entry stays queued, untouched.
type Coordinator struct {
	ledger Ledger
}

// NewCoordinator returns a coordinator backed by the given ledger.
func NewCoordinator(l Ledger) *Coordinator {
	return &Coordinator{ledger: l}
}

// Promotion is the outcome of a successful promote: the entry that
// left the queue and the tier it was reserved into.  Downstream
// invitation dispatch is the caller's concern.
type Promotion struct {
	Entry  model.WaitlistEntry
	TierID uint64
}

// Promote reserves one unit for the entry and removes it from the
// queue.  Tier-specific entries target their requested tier; a
// tier-agnostic entry takes the first tier with capacity by ascending
// sort order.  On *InsufficientCapacityError the queue is left
// exactly as it was.
func (c *Coordinator) Promote(ctx context.Context, q *Queue, tiers []model.TicketTier, entryID uint64) (Promotion, error) {
	entry, ok := q.Get(entryID)
	if !ok {
		return Promotion{}, ErrEntryNotFound
	}

	var tierID uint64
	if entry.TierID != nil {
		found := false
		for _, t := range tiers {
			if t.ID == *entry.TierID {
				found = true
				break
			}
		}
		if !found {
			return Promotion{}, ErrUnknownTier
		}
		if _, err := c.ledger.Reserve(ctx, *entry.TierID, 1); err != nil {
			return Promotion{}, err
		}
		tierID = *entry.TierID
	} else {
		id, err := c.reserveAny(ctx, tiers)
		if err != nil {
			return Promotion{}, err
		}
		tierID = id
	}

	if _, err := q.Remove(entryID); err != nil {
		// Position conflict after a successful reservation: undo the
		// reservation so the ledger and queue stay consistent, then
		// surface the conflict so the transaction aborts.
		_ = c.ledger.Release(ctx, tierID, 1)
		return Promotion{}, err
	}
	return Promotion{Entry: entry, TierID: tierID}, nil
}

// reserveAny walks the tiers by ascending sort order and reserves one
// unit from the first that accepts.  The ledger is the authority on
// availability; stale sold counts on the snapshot only cost an extra
// attempt, never a wrong result.
func (c *Coordinator) reserveAny(ctx context.Context, tiers []model.TicketTier) (uint64, error) {
	sorted := make([]model.TicketTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })

	for _, t := range sorted {
		if !t.IsActive {
			continue
		}
		if _, err := c.ledger.Reserve(ctx, t.ID, 1); err != nil {
			var capErr *InsufficientCapacityError
			if errors.As(err, &capErr) {
				continue
			}
			return 0, err
		}
		return t.ID, nil
	}
	return 0, &InsufficientCapacityError{Requested: 1, Remaining: 0}
}

// BulkResult reports the outcome of one entry within a bulk
// promotion.  Err is nil for promoted entries; failed entries stay
// queued at their original relative order.
type BulkResult struct {
	EntryID   uint64
	Promotion Promotion
	Err       error
}

// BulkPromote processes the given entry IDs sequentially, in order.
// Each element attempts its own reservation; a failure is recorded
// and the remaining entries still attempt theirs.  Partial success is
// the expected shape of the result, never an all-or-nothing
// transaction, and already-promoted entries are not rolled back when
// a later one fails.
func (c *Coordinator) BulkPromote(ctx context.Context, q *Queue, tiers []model.TicketTier, entryIDs []uint64) []BulkResult {
	results := make([]BulkResult, 0, len(entryIDs))
	for _, id := range entryIDs {
		p, err := c.Promote(ctx, q, tiers, id)
		results = append(results, BulkResult{EntryID: id, Promotion: p, Err: err})
	}
	return results
}

// SendInvites promotes as many queue entries as the event has free
// capacity, in current queue order.  The invite count is the total
// remaining capacity across active tiers; any unlimited tier opens
// the whole queue.  Tier-specific entries still respect their own
// tier's capacity — an entry whose tier is full fails and stays
// queued even when other tiers have room.
func (c *Coordinator) SendInvites(ctx context.Context, q *Queue, tiers []model.TicketTier) []BulkResult {
	available := 0
	unlimited := false
	for _, t := range tiers {
		if !t.IsActive {
			continue
		}
		r, bounded := t.Remaining()
		if !bounded {
			unlimited = true
			break
		}
		available += r
	}
	n := available
	if unlimited {
		n = q.Len()
	}

	top := q.TopN(n)
	ids := make([]uint64, len(top))
	for i, e := range top {
		ids[i] = e.ID
	}
	return c.BulkPromote(ctx, q, tiers, ids)
}
