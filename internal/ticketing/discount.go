package ticketing

import (
	"time"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

// AppliedDiscount is the successful outcome of validating a promo code
// against an order.  AmountCents is already bounded: never negative
// and never larger than the subtotal it was computed from.
type AppliedDiscount struct {
	CodeID      uint64
	Code        string
	AmountCents int64
}

// ValidateCode checks an already-fetched promo code against a tier,
// quantity and subtotal at a given instant and computes the discount.
// It is pure: usage counters are not touched and no exclusivity is
// assumed — enforcing per-code usage limits is the caller's concern.
//
// Rejections come back as the ErrCode* sentinels.  A quantity above
// the code's MaxQuantity is not a rejection: the discount simply stops
// growing past the cap (partial application).
func ValidateCode(pc model.PromoCode, tierID uint64, quantity int, subtotalCents int64, now time.Time) (AppliedDiscount, error) {
	if quantity < 1 || subtotalCents < 0 {
		return AppliedDiscount{}, ErrCodeInvalidValue
	}
	if !pc.IsActive {
		return AppliedDiscount{}, ErrCodeInactive
	}
	if pc.StartsAt != nil && now.Before(*pc.StartsAt) {
		return AppliedDiscount{}, ErrCodeOutOfWindow
	}
	if pc.EndsAt != nil && now.After(*pc.EndsAt) {
		return AppliedDiscount{}, ErrCodeOutOfWindow
	}
	if pc.TierID != nil && *pc.TierID != tierID {
		return AppliedDiscount{}, ErrCodeTierMismatch
	}
	if pc.DiscountValue <= 0 {
		return AppliedDiscount{}, ErrCodeInvalidValue
	}

	var discount int64
	switch pc.DiscountType {
	case model.DiscountPercentage:
		if pc.DiscountValue > 100 {
			return AppliedDiscount{}, ErrCodeInvalidValue
		}
		discount = subtotalCents * pc.DiscountValue / 100
	case model.DiscountFixed:
		applicableQty := quantity
		if pc.MaxQuantity != nil && *pc.MaxQuantity < applicableQty {
			applicableQty = *pc.MaxQuantity
		}
		discount = pc.DiscountValue * int64(applicableQty)
	default:
		return AppliedDiscount{}, ErrCodeInvalidValue
	}

	// Discount cap: never negative, never exceeds the subtotal.
	if discount < 0 {
		discount = 0
	}
	if discount > subtotalCents {
		discount = subtotalCents
	}
	return AppliedDiscount{CodeID: pc.ID, Code: pc.Code, AmountCents: discount}, nil
}
