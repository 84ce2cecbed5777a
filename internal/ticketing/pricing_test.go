package ticketing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

func TestPriceWithoutDiscount(t *testing.T) {
	tier := model.TicketTier{PriceCents: 1000, Currency: "USD"}

	q := Price(tier, 3, nil)

	assert.Equal(t, int64(3000), q.SubtotalCents)
	assert.Equal(t, int64(0), q.DiscountCents)
	assert.Equal(t, int64(3000), q.TotalCents)
	assert.Equal(t, "USD", q.Currency)
}

func TestPriceWithDiscount(t *testing.T) {
	tier := model.TicketTier{PriceCents: 1000, Currency: "EUR"}

	// Scenario: fixed 200/unit capped at 3 units on a 5-unit order.
	q := Price(tier, 5, &AppliedDiscount{AmountCents: 600})

	assert.Equal(t, int64(5000), q.SubtotalCents)
	assert.Equal(t, int64(600), q.DiscountCents)
	assert.Equal(t, int64(4400), q.TotalCents)
}

// The calculator re-asserts the discount bounds on its own; a rogue
// AppliedDiscount must not produce a negative total.
func TestPriceClampsRogueDiscount(t *testing.T) {
	tier := model.TicketTier{PriceCents: 500, Currency: "USD"}

	q := Price(tier, 2, &AppliedDiscount{AmountCents: 99999})
	assert.Equal(t, int64(1000), q.DiscountCents)
	assert.Equal(t, int64(0), q.TotalCents)

	q = Price(tier, 2, &AppliedDiscount{AmountCents: -50})
	assert.Equal(t, int64(0), q.DiscountCents)
	assert.Equal(t, int64(1000), q.TotalCents)
}
