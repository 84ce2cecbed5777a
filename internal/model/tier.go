package model

import "time"

// TicketTier is a purchasable ticket category belonging to an event.
// Prices are stored in minor currency units (cents).  Quantity is nil
// for unlimited tiers; when set, SoldCount must never exceed it —
// that invariant is owned by the inventory ledger and is enforced at
// the storage layer with a conditional update, never by plain
// read-modify-write from handlers.
//
// Fields:
//  ID           – primary key identifier.
//  EventID      – event this tier belongs to.
//  Name         – display name of the tier (e.g. "Early Bird").
//  PriceCents   – unit price in minor currency units, never negative.
//  Currency     – ISO 4217 currency code (e.g. "USD").
//  Quantity     – optional capacity; nil means unlimited.
//  SoldCount    – number of units reserved so far; mutated only by the ledger.
//  SaleStartsAt – optional instant before which the tier is not purchasable.
//  SaleEndsAt   – optional instant after which the tier is not purchasable.
//  IsActive     – tiers are retired by deactivation, never hard-deleted
//                 while orders reference them.
//  SortOrder    – organizer-declared ordering, also the preference order
//                 when promoting tier-agnostic waitlist entries.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type TicketTier struct {
	ID           uint64     // ticket_tiers.id
	EventID      uint64     // ticket_tiers.event_id
	Name         string     // ticket_tiers.name
	PriceCents   int64      // ticket_tiers.price_cents
	Currency     string     // ticket_tiers.currency
	Quantity     *int       // ticket_tiers.quantity (nullable = unlimited)
	SoldCount    int        // ticket_tiers.sold_count
	SaleStartsAt *time.Time // ticket_tiers.sale_starts_at (nullable)
	SaleEndsAt   *time.Time // ticket_tiers.sale_ends_at (nullable)
	IsActive     bool       // ticket_tiers.is_active
	SortOrder    int        // ticket_tiers.sort_order
	CreatedAt    time.Time  // ticket_tiers.created_at
	UpdatedAt    time.Time  // ticket_tiers.updated_at
}

// Remaining reports how many units are still available.  The second
// return value is false for unlimited tiers, in which case the count
// is meaningless.
func (t TicketTier) Remaining() (int, bool) {
	if t.Quantity == nil {
		return 0, false
	}
	r := *t.Quantity - t.SoldCount
	if r < 0 {
		r = 0
	}
	return r, true
}
