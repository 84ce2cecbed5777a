package ticketing

import (
	"time"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

// SaleStatus is the resolved purchasability of a tier at an instant.
type SaleStatus string

const (
	StatusInactive SaleStatus = "inactive"
	StatusUpcoming SaleStatus = "upcoming"
	StatusOnSale   SaleStatus = "on_sale"
	StatusSoldOut  SaleStatus = "sold_out"
	StatusEnded    SaleStatus = "ended"
)

// ResolveStatus derives the sale status of a tier from its active
// flag, sale window and capacity.  The check order is fixed and total:
// inactive overrides everything, the sale window is evaluated before
// capacity, and exactly one status is returned for any input.
func ResolveStatus(t model.TicketTier, now time.Time) SaleStatus {
	if !t.IsActive {
		return StatusInactive
	}
	if t.SaleStartsAt != nil && now.Before(*t.SaleStartsAt) {
		return StatusUpcoming
	}
	if t.SaleEndsAt != nil && now.After(*t.SaleEndsAt) {
		return StatusEnded
	}
	if t.Quantity != nil && t.SoldCount >= *t.Quantity {
		return StatusSoldOut
	}
	return StatusOnSale
}
