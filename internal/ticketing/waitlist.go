package ticketing

import (
	"sort"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

// priorityRank maps a priority class to its ordering bucket; lower
// ranks queue ahead.  Unknown classes fall back to normal.
func priorityRank(p string) int {
	switch p {
	case model.PriorityVIP:
		return 0
	case model.PriorityHigh:
		return 1
	default:
		return 2
	}
}

// Queue is the ordered waitlist of a single event.  Entries are kept
// sorted by ascending position and positions stay dense (1..N, no
// gaps, no duplicates) across every mutation.  The queue itself is
// not safe for concurrent use; callers serialize access per event,
// which in the SQL path happens via row locks on the entries.
type Queue struct {
	eventID uint64
	entries []model.WaitlistEntry
}

// NewQueue builds a queue from stored entries.  Entries are sorted by
// position and the density invariant is verified; a violation means
// the stored sequence was corrupted by a bug and comes back as
// *PositionConflictError.
func NewQueue(eventID uint64, entries []model.WaitlistEntry) (*Queue, error) {
	es := make([]model.WaitlistEntry, len(entries))
	copy(es, entries)
	sort.SliceStable(es, func(i, j int) bool { return es[i].Position < es[j].Position })
	q := &Queue{eventID: eventID, entries: es}
	if err := q.checkDense(); err != nil {
		return nil, err
	}
	return q, nil
}

// Len reports the number of queued entries.
func (q *Queue) Len() int { return len(q.entries) }

// Entries returns a copy of the queue in position order.
func (q *Queue) Entries() []model.WaitlistEntry {
	out := make([]model.WaitlistEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Get looks up an entry by ID.
func (q *Queue) Get(id uint64) (model.WaitlistEntry, bool) {
	for _, e := range q.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.WaitlistEntry{}, false
}

// TopN returns the first n entries in queue order (fewer when the
// queue is shorter).
func (q *Queue) TopN(n int) []model.WaitlistEntry {
	if n > len(q.entries) {
		n = len(q.entries)
	}
	if n < 0 {
		n = 0
	}
	out := make([]model.WaitlistEntry, n)
	copy(out, q.entries[:n])
	return out
}

// Add inserts a new entry after the last existing entry of equal or
// higher priority and before all strictly lower-priority entries, so
// arrival order is preserved within a priority class.  Manual
// reordering may have interleaved classes; in that case the new entry
// still lands directly after the last equal-or-higher-priority entry.
// The stored entry, with its assigned position, is returned.
func (q *Queue) Add(e model.WaitlistEntry) (model.WaitlistEntry, error) {
	e.EventID = q.eventID
	rank := priorityRank(e.Priority)
	at := 0
	for i := len(q.entries) - 1; i >= 0; i-- {
		if priorityRank(q.entries[i].Priority) <= rank {
			at = i + 1
			break
		}
	}
	q.entries = append(q.entries, model.WaitlistEntry{})
	copy(q.entries[at+1:], q.entries[at:])
	q.entries[at] = e
	if err := q.renumber(); err != nil {
		return model.WaitlistEntry{}, err
	}
	return q.entries[at], nil
}

// MoveUp swaps the entry with its predecessor.  At the head of the
// queue it is a no-op and reports false.  Moves may cross priority
// buckets; placing a lower-priority entry ahead of a higher-priority
// one is an intentional operator override.
func (q *Queue) MoveUp(id uint64) (bool, error) {
	i := q.index(id)
	if i < 0 {
		return false, ErrEntryNotFound
	}
	if i == 0 {
		return false, nil
	}
	q.entries[i-1], q.entries[i] = q.entries[i], q.entries[i-1]
	if err := q.renumber(); err != nil {
		return false, err
	}
	return true, nil
}

// MoveDown swaps the entry with its successor; a no-op at the tail.
func (q *Queue) MoveDown(id uint64) (bool, error) {
	i := q.index(id)
	if i < 0 {
		return false, ErrEntryNotFound
	}
	if i == len(q.entries)-1 {
		return false, nil
	}
	q.entries[i], q.entries[i+1] = q.entries[i+1], q.entries[i]
	if err := q.renumber(); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the entry and renumbers the remainder so positions
// stay dense.  The removed entry is returned with the position it
// held.
func (q *Queue) Remove(id uint64) (model.WaitlistEntry, error) {
	i := q.index(id)
	if i < 0 {
		return model.WaitlistEntry{}, ErrEntryNotFound
	}
	removed := q.entries[i]
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	if err := q.renumber(); err != nil {
		return model.WaitlistEntry{}, err
	}
	return removed, nil
}

func (q *Queue) index(id uint64) int {
	for i, e := range q.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// renumber rewrites positions 1..N and re-verifies density.  The
// verification can only fail on a bug in this package, which is
// exactly why it stays: a conflict must abort the surrounding
// transaction instead of persisting a corrupted sequence.
func (q *Queue) renumber() error {
	for i := range q.entries {
		q.entries[i].Position = i + 1
	}
	return q.checkDense()
}

func (q *Queue) checkDense() error {
	for i, e := range q.entries {
		if e.Position != i+1 {
			return &PositionConflictError{EventID: q.eventID, Position: e.Position, Index: i}
		}
	}
	return nil
}
