package ticketing

import "github.com/kamalraji/plan-it-together-sub006/internal/model"

// Quote is the priced breakdown of an order before reservation.
type Quote struct {
	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
	TotalCents    int64  `json:"total_cents"`
	Currency      string `json:"currency"`
}

// Price combines a tier's unit price, a quantity and an optional
// applied discount into a final total.  The discount bounds are
// re-asserted here even though ValidateCode already guarantees them;
// a money computation never trusts a single enforcement point.
func Price(t model.TicketTier, quantity int, applied *AppliedDiscount) Quote {
	subtotal := t.PriceCents * int64(quantity)
	var discount int64
	if applied != nil {
		discount = applied.AmountCents
	}
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	total := subtotal - discount
	if total < 0 {
		total = 0
	}
	return Quote{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TotalCents:    total,
		Currency:      t.Currency,
	}
}
