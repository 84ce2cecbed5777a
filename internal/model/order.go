package model

import "time"

// Order statuses stored in orders.status.
const (
	OrderConfirmed = "CONFIRMED"
	OrderCancelled = "CANCELLED"
)

// Order records a confirmed purchase of a single ticket tier.  Each
// order references exactly one tier, at most one promo code, and
// corresponds to exactly one successful ledger reservation.  The money
// columns are denormalized so historical orders survive later price or
// promo changes.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – opaque UUID handed to the buyer.
//  UserID        – buyer.
//  EventID       – event the tier belongs to.
//  TierID        – purchased tier.
//  PromoCodeID   – promo code applied, if any (nullable).
//  Quantity      – number of units purchased.
//  SubtotalCents – tier price times quantity at purchase time.
//  DiscountCents – discount actually applied, 0 ≤ discount ≤ subtotal.
//  TotalCents    – subtotal minus discount, never negative.
//  Currency      – ISO 4217 code copied from the tier.
//  Status        – OrderConfirmed or OrderCancelled.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Order struct {
	ID            uint64    // orders.id
	Reference     string    // orders.reference
	UserID        uint64    // orders.user_id
	EventID       uint64    // orders.event_id
	TierID        uint64    // orders.tier_id
	PromoCodeID   *uint64   // orders.promo_code_id (nullable)
	Quantity      int       // orders.quantity
	SubtotalCents int64     // orders.subtotal_cents
	DiscountCents int64     // orders.discount_cents
	TotalCents    int64     // orders.total_cents
	Currency      string    // orders.currency
	Status        string    // orders.status
	CreatedAt     time.Time // orders.created_at
	UpdatedAt     time.Time // orders.updated_at
}
