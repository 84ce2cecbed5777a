package ticketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

func intPtr(n int) *int              { return &n }
func timePtr(t time.Time) *time.Time { return &t }

func TestResolveStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name string
		tier model.TicketTier
		want SaleStatus
	}{
		{
			name: "inactive overrides everything",
			tier: model.TicketTier{IsActive: false, SaleStartsAt: timePtr(after), Quantity: intPtr(0)},
			want: StatusInactive,
		},
		{
			name: "upcoming before sale start",
			tier: model.TicketTier{IsActive: true, SaleStartsAt: timePtr(after)},
			want: StatusUpcoming,
		},
		{
			name: "ended after sale end",
			tier: model.TicketTier{IsActive: true, SaleEndsAt: timePtr(before)},
			want: StatusEnded,
		},
		{
			name: "ended wins over sold out",
			tier: model.TicketTier{IsActive: true, SaleEndsAt: timePtr(before), Quantity: intPtr(10), SoldCount: 10},
			want: StatusEnded,
		},
		{
			name: "sold out at capacity",
			tier: model.TicketTier{IsActive: true, Quantity: intPtr(10), SoldCount: 10},
			want: StatusSoldOut,
		},
		{
			name: "on sale inside window with capacity",
			tier: model.TicketTier{IsActive: true, SaleStartsAt: timePtr(before), SaleEndsAt: timePtr(after), Quantity: intPtr(10), SoldCount: 3},
			want: StatusOnSale,
		},
		{
			name: "on sale with no window and unlimited quantity",
			tier: model.TicketTier{IsActive: true},
			want: StatusOnSale,
		},
		{
			name: "sale start boundary is on sale",
			tier: model.TicketTier{IsActive: true, SaleStartsAt: timePtr(now)},
			want: StatusOnSale,
		},
		{
			name: "sale end boundary is still on sale",
			tier: model.TicketTier{IsActive: true, SaleEndsAt: timePtr(now)},
			want: StatusOnSale,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.tier, now))
		})
	}
}

// Moving only the clock across the sale window must walk the statuses
// forward, never backward.
func TestResolveStatusWindowProgression(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	tier := model.TicketTier{
		IsActive:     true,
		Quantity:     intPtr(100),
		SoldCount:    5,
		SaleStartsAt: timePtr(start),
		SaleEndsAt:   timePtr(end),
	}

	require.Equal(t, StatusUpcoming, ResolveStatus(tier, start.Add(-time.Minute)))
	require.Equal(t, StatusOnSale, ResolveStatus(tier, start.Add(time.Minute)))
	require.Equal(t, StatusEnded, ResolveStatus(tier, end.Add(time.Minute)))

	tier.SoldCount = 100
	require.Equal(t, StatusSoldOut, ResolveStatus(tier, start.Add(time.Minute)))
	require.Equal(t, StatusEnded, ResolveStatus(tier, end.Add(time.Minute)))
}
