package model

import "time"

// Discount types accepted in promo_codes.discount_type.
const (
	DiscountPercentage = "percentage" // value is a percent of the subtotal, in (0,100]
	DiscountFixed      = "fixed"      // value is an amount in cents per discounted unit
)

// PromoCode is a discount code scoped to an event.  The code string is
// stored case-normalized (upper case) and is unique per event.  TierID
// optionally restricts the code to a single tier.  MaxQuantity caps
// how many units a fixed discount applies to; quantities above the cap
// are still allowed, the discount simply stops growing.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – event this code belongs to.
//  Code          – normalized code string, unique per event.
//  DiscountType  – DiscountPercentage or DiscountFixed.
//  DiscountValue – percent for percentage codes, cents per unit for fixed.
//  MaxQuantity   – optional cap on discounted units (nullable).
//  TierID        – optional tier restriction (nullable).
//  StartsAt      – optional activation instant (nullable).
//  EndsAt        – optional expiry instant (nullable).
//  IsActive      – manual kill switch.
//  CreatedAt     – creation timestamp.
type PromoCode struct {
	ID            uint64     // promo_codes.id
	EventID       uint64     // promo_codes.event_id
	Code          string     // promo_codes.code
	DiscountType  string     // promo_codes.discount_type
	DiscountValue int64      // promo_codes.discount_value
	MaxQuantity   *int       // promo_codes.max_quantity (nullable)
	TierID        *uint64    // promo_codes.tier_id (nullable)
	StartsAt      *time.Time // promo_codes.starts_at (nullable)
	EndsAt        *time.Time // promo_codes.ends_at (nullable)
	IsActive      bool       // promo_codes.is_active
	CreatedAt     time.Time  // promo_codes.created_at
}
