package ticketing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

func entry(id uint64, priority string, pos int) model.WaitlistEntry {
	return model.WaitlistEntry{ID: id, EventID: 1, Priority: priority, Position: pos}
}

func positions(q *Queue) []int {
	es := q.Entries()
	out := make([]int, len(es))
	for i, e := range es {
		out[i] = e.Position
	}
	return out
}

func ids(q *Queue) []uint64 {
	es := q.Entries()
	out := make([]uint64, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestNewQueueSortsByPosition(t *testing.T) {
	q, err := NewQueue(1, []model.WaitlistEntry{
		entry(3, model.PriorityNormal, 3),
		entry(1, model.PriorityVIP, 1),
		entry(2, model.PriorityNormal, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, ids(q))
}

func TestNewQueueRejectsNonDensePositions(t *testing.T) {
	_, err := NewQueue(1, []model.WaitlistEntry{
		entry(1, model.PriorityNormal, 1),
		entry(2, model.PriorityNormal, 3), // gap
	})
	var conflict *PositionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, uint64(1), conflict.EventID)

	_, err = NewQueue(1, []model.WaitlistEntry{
		entry(1, model.PriorityNormal, 2),
		entry(2, model.PriorityNormal, 2), // duplicate
	})
	assert.ErrorAs(t, err, &conflict)
}

func TestAddOrdersByPriorityBucket(t *testing.T) {
	q, err := NewQueue(1, nil)
	require.NoError(t, err)

	add := func(id uint64, priority string) {
		t.Helper()
		_, err := q.Add(entry(id, priority, 0))
		require.NoError(t, err)
	}

	add(1, model.PriorityNormal)
	add(2, model.PriorityVIP)
	add(3, model.PriorityNormal)
	add(4, model.PriorityHigh)
	add(5, model.PriorityVIP)

	// vip FIFO, then high, then normal FIFO.
	assert.Equal(t, []uint64{2, 5, 4, 1, 3}, ids(q))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, positions(q))
}

func TestAddAfterOperatorOverride(t *testing.T) {
	// An operator moved a normal entry ahead of a vip.  A new high
	// entry still lands after the last equal-or-higher entry.
	q, err := NewQueue(1, []model.WaitlistEntry{
		entry(1, model.PriorityNormal, 1),
		entry(2, model.PriorityVIP, 2),
	})
	require.NoError(t, err)

	added, err := q.Add(entry(3, model.PriorityHigh, 0))
	require.NoError(t, err)
	assert.Equal(t, 3, added.Position)
	assert.Equal(t, []uint64{1, 2, 3}, ids(q))
}

func TestMoveUpAndDown(t *testing.T) {
	q, err := NewQueue(1, []model.WaitlistEntry{
		entry(1, model.PriorityVIP, 1),
		entry(2, model.PriorityNormal, 2),
		entry(3, model.PriorityNormal, 3),
	})
	require.NoError(t, err)

	// No-op at the head.
	moved, err := q.MoveUp(1)
	require.NoError(t, err)
	assert.False(t, moved)

	// No-op at the tail.
	moved, err = q.MoveDown(3)
	require.NoError(t, err)
	assert.False(t, moved)

	// A normal entry may be moved ahead of the vip: operator override
	// crosses priority buckets on purpose.
	moved, err = q.MoveUp(2)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []uint64{2, 1, 3}, ids(q))
	assert.Equal(t, []int{1, 2, 3}, positions(q))

	moved, err = q.MoveDown(2)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []uint64{1, 2, 3}, ids(q))

	_, err = q.MoveUp(99)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	_, err = q.MoveDown(99)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRemoveRenumbersDensely(t *testing.T) {
	q, err := NewQueue(1, []model.WaitlistEntry{
		entry(1, model.PriorityVIP, 1),
		entry(2, model.PriorityNormal, 2),
		entry(3, model.PriorityNormal, 3),
	})
	require.NoError(t, err)

	removed, err := q.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), removed.ID)
	assert.Equal(t, 1, removed.Position)

	// [normal@1, normal@2] after renumbering.
	assert.Equal(t, []uint64{2, 3}, ids(q))
	assert.Equal(t, []int{1, 2}, positions(q))

	_, err = q.Remove(99)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

// Positions must stay dense across an arbitrary add/move/remove mix.
func TestQueueDensityAcrossMutations(t *testing.T) {
	q, err := NewQueue(1, nil)
	require.NoError(t, err)

	prios := []string{
		model.PriorityNormal, model.PriorityVIP, model.PriorityHigh,
		model.PriorityNormal, model.PriorityVIP, model.PriorityNormal,
	}
	for i, p := range prios {
		_, err := q.Add(entry(uint64(i+1), p, 0))
		require.NoError(t, err)
	}

	_, err = q.Remove(2)
	require.NoError(t, err)
	_, err = q.MoveUp(6)
	require.NoError(t, err)
	_, err = q.Remove(4)
	require.NoError(t, err)
	_, err = q.MoveDown(5)
	require.NoError(t, err)
	_, err = q.Add(entry(7, model.PriorityHigh, 0))
	require.NoError(t, err)

	assert.Equal(t, 5, q.Len())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, positions(q))
}

func TestTopN(t *testing.T) {
	q, err := NewQueue(1, []model.WaitlistEntry{
		entry(1, model.PriorityVIP, 1),
		entry(2, model.PriorityNormal, 2),
		entry(3, model.PriorityNormal, 3),
	})
	require.NoError(t, err)

	top := q.TopN(2)
	require.Len(t, top, 2)
	assert.Equal(t, uint64(1), top[0].ID)
	assert.Equal(t, uint64(2), top[1].ID)

	assert.Len(t, q.TopN(10), 3)
	assert.Len(t, q.TopN(0), 0)
}
