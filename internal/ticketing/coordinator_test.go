package ticketing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

func tier(id uint64, sortOrder int, quantity *int, sold int) model.TicketTier {
	return model.TicketTier{
		ID:        id,
		EventID:   1,
		IsActive:  true,
		Quantity:  quantity,
		SoldCount: sold,
		SortOrder: sortOrder,
	}
}

func ledgerFor(tiers []model.TicketTier) *MemoryLedger {
	l := NewMemoryLedger()
	for _, t := range tiers {
		l.AddTier(t.ID, t.Quantity, t.SoldCount)
	}
	return l
}

func TestPromoteTierSpecific(t *testing.T) {
	ctx := context.Background()
	tiers := []model.TicketTier{tier(10, 1, intPtr(2), 0)}
	l := ledgerFor(tiers)
	c := NewCoordinator(l)

	tierID := uint64(10)
	q, err := NewQueue(1, []model.WaitlistEntry{
		{ID: 1, EventID: 1, TierID: &tierID, Priority: model.PriorityVIP, Position: 1},
		{ID: 2, EventID: 1, Priority: model.PriorityNormal, Position: 2},
		{ID: 3, EventID: 1, Priority: model.PriorityNormal, Position: 3},
	})
	require.NoError(t, err)

	p, err := c.Promote(ctx, q, tiers, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), p.TierID)
	assert.Equal(t, uint64(1), p.Entry.ID)

	// Queue renumbered to [normal@1, normal@2].
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, []int{1, 2}, positions(q))

	sold, err := l.SoldCount(10)
	require.NoError(t, err)
	assert.Equal(t, 1, sold)
}

func TestPromoteFailureLeavesEntryQueued(t *testing.T) {
	ctx := context.Background()
	tiers := []model.TicketTier{tier(10, 1, intPtr(1), 1)} // full
	c := NewCoordinator(ledgerFor(tiers))

	tierID := uint64(10)
	q, err := NewQueue(1, []model.WaitlistEntry{
		{ID: 1, EventID: 1, TierID: &tierID, Priority: model.PriorityNormal, Position: 1},
	})
	require.NoError(t, err)

	_, err = c.Promote(ctx, q, tiers, 1)
	var capErr *InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 0, capErr.Remaining)

	// Entry stays in place; promotion never removes on failure.
	assert.Equal(t, 1, q.Len())
	_, ok := q.Get(1)
	assert.True(t, ok)
}

func TestPromoteTierAgnosticFollowsSortOrder(t *testing.T) {
	ctx := context.Background()
	// Tier 20 sorts first but is full; tier 30 has room.
	tiers := []model.TicketTier{
		tier(30, 2, intPtr(5), 0),
		tier(20, 1, intPtr(1), 1),
	}
	l := ledgerFor(tiers)
	c := NewCoordinator(l)

	q, err := NewQueue(1, []model.WaitlistEntry{
		{ID: 1, EventID: 1, Priority: model.PriorityNormal, Position: 1},
	})
	require.NoError(t, err)

	p, err := c.Promote(ctx, q, tiers, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), p.TierID)

	sold, err := l.SoldCount(30)
	require.NoError(t, err)
	assert.Equal(t, 1, sold)
}

func TestPromoteTierAgnosticSkipsInactiveTiers(t *testing.T) {
	ctx := context.Background()
	inactive := tier(20, 1, intPtr(5), 0)
	inactive.IsActive = false
	tiers := []model.TicketTier{inactive, tier(30, 2, intPtr(5), 0)}
	c := NewCoordinator(ledgerFor(tiers))

	q, err := NewQueue(1, []model.WaitlistEntry{
		{ID: 1, EventID: 1, Priority: model.PriorityNormal, Position: 1},
	})
	require.NoError(t, err)

	p, err := c.Promote(ctx, q, tiers, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), p.TierID)
}

func TestPromoteUnknownEntryAndTier(t *testing.T) {
	ctx := context.Background()
	tiers := []model.TicketTier{tier(10, 1, intPtr(5), 0)}
	c := NewCoordinator(ledgerFor(tiers))

	q, err := NewQueue(1, nil)
	require.NoError(t, err)
	_, err = c.Promote(ctx, q, tiers, 1)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	ghost := uint64(99)
	q, err = NewQueue(1, []model.WaitlistEntry{
		{ID: 1, EventID: 1, TierID: &ghost, Priority: model.PriorityNormal, Position: 1},
	})
	require.NoError(t, err)
	_, err = c.Promote(ctx, q, tiers, 1)
	assert.ErrorIs(t, err, ErrUnknownTier)
}

// Three entries, two free units: the first two promote, the third is
// reported failed and keeps its relative order at the head.
func TestBulkPromotePartialSuccess(t *testing.T) {
	ctx := context.Background()
	tiers := []model.TicketTier{tier(10, 1, intPtr(2), 0)}
	l := ledgerFor(tiers)
	c := NewCoordinator(l)

	q, err := NewQueue(1, []model.WaitlistEntry{
		{ID: 1, EventID: 1, Priority: model.PriorityNormal, Position: 1},
		{ID: 2, EventID: 1, Priority: model.PriorityNormal, Position: 2},
		{ID: 3, EventID: 1, Priority: model.PriorityNormal, Position: 3},
	})
	require.NoError(t, err)

	results := c.BulkPromote(ctx, q, tiers, []uint64{1, 2, 3})
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	var capErr *InsufficientCapacityError
	assert.ErrorAs(t, results[2].Err, &capErr)

	// The failed entry remains queued, renumbered to position 1.
	assert.Equal(t, 1, q.Len())
	e, ok := q.Get(3)
	require.True(t, ok)
	assert.Equal(t, 1, e.Position)

	sold, err := l.SoldCount(10)
	require.NoError(t, err)
	assert.Equal(t, 2, sold)
}

func TestSendInvitesPromotesUpToCapacity(t *testing.T) {
	ctx := context.Background()
	tiers := []model.TicketTier{
		tier(10, 1, intPtr(1), 0),
		tier(20, 2, intPtr(1), 0),
	}
	c := NewCoordinator(ledgerFor(tiers))

	q, err := NewQueue(1, []model.WaitlistEntry{
		{ID: 1, EventID: 1, Priority: model.PriorityNormal, Position: 1},
		{ID: 2, EventID: 1, Priority: model.PriorityNormal, Position: 2},
		{ID: 3, EventID: 1, Priority: model.PriorityNormal, Position: 3},
	})
	require.NoError(t, err)

	results := c.SendInvites(ctx, q, tiers)
	require.Len(t, results, 2) // only two units exist event-wide

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, q.Len())
	_, ok := q.Get(3)
	assert.True(t, ok)
}

func TestSendInvitesRespectsTierSpecificCapacity(t *testing.T) {
	ctx := context.Background()
	fullTier := uint64(10)
	tiers := []model.TicketTier{
		tier(10, 1, intPtr(1), 1), // full
		tier(20, 2, intPtr(2), 0),
	}
	c := NewCoordinator(ledgerFor(tiers))

	q, err := NewQueue(1, []model.WaitlistEntry{
		{ID: 1, EventID: 1, TierID: &fullTier, Priority: model.PriorityVIP, Position: 1},
		{ID: 2, EventID: 1, Priority: model.PriorityNormal, Position: 2},
		{ID: 3, EventID: 1, Priority: model.PriorityNormal, Position: 3},
	})
	require.NoError(t, err)

	results := c.SendInvites(ctx, q, tiers)
	require.Len(t, results, 2) // two free units event-wide

	// The tier-specific entry fails (its tier is full) and stays
	// queued; the tier-agnostic entry takes a unit from tier 20.
	var capErr *InsufficientCapacityError
	assert.ErrorAs(t, results[0].Err, &capErr)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, uint64(20), results[1].Promotion.TierID)

	assert.Equal(t, 2, q.Len())
	_, ok := q.Get(1)
	assert.True(t, ok)
}

func TestSendInvitesUnlimitedTierDrainsQueue(t *testing.T) {
	ctx := context.Background()
	tiers := []model.TicketTier{tier(10, 1, nil, 0)}
	c := NewCoordinator(ledgerFor(tiers))

	q, err := NewQueue(1, []model.WaitlistEntry{
		{ID: 1, EventID: 1, Priority: model.PriorityNormal, Position: 1},
		{ID: 2, EventID: 1, Priority: model.PriorityNormal, Position: 2},
		{ID: 3, EventID: 1, Priority: model.PriorityNormal, Position: 3},
	})
	require.NoError(t, err)

	results := c.SendInvites(ctx, q, tiers)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, 0, q.Len())
}
