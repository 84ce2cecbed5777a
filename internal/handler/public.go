package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
	"github.com/kamalraji/plan-it-together-sub006/internal/repository"
	"github.com/kamalraji/plan-it-together-sub006/internal/ticketing"
)

// PublicHandler serves unauthenticated catalog reads: event info and
// the tier listing with resolved sale statuses.
type PublicHandler struct {
	Events *repository.EventRepo
	Tiers  *repository.TierRepo
}

func NewPublicHandler(events *repository.EventRepo, tiers *repository.TierRepo) *PublicHandler {
	return &PublicHandler{Events: events, Tiers: tiers}
}

// tierView is the public projection of a tier.  Sold counts are not
// exposed; buyers only see remaining (for limited tiers) and status.
type tierView struct {
	ID         uint64               `json:"id"`
	Name       string               `json:"name"`
	PriceCents int64                `json:"price_cents"`
	Currency   string               `json:"currency"`
	Remaining  *int                 `json:"remaining,omitempty"`
	SortOrder  int                  `json:"sort_order"`
	Status     ticketing.SaleStatus `json:"status"`
	SaleStarts *time.Time           `json:"sale_starts_at,omitempty"`
	SaleEnds   *time.Time           `json:"sale_ends_at,omitempty"`
}

func toTierView(t model.TicketTier, now time.Time) tierView {
	v := tierView{
		ID:         t.ID,
		Name:       t.Name,
		PriceCents: t.PriceCents,
		Currency:   t.Currency,
		SortOrder:  t.SortOrder,
		Status:     ticketing.ResolveStatus(t, now),
		SaleStarts: t.SaleStartsAt,
		SaleEnds:   t.SaleEndsAt,
	}
	if r, bounded := t.Remaining(); bounded {
		v.Remaining = &r
	}
	return v
}

// ListTiers handles GET /v1/events/:id/tiers.  Every tier of the event
// is returned, each with its status resolved at request time, so a
// storefront renders upcoming and sold-out tiers instead of hiding
// them.
func (h *PublicHandler) ListTiers(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return jsonError(c, http.StatusNotFound, "event not found")
		}
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	tiers, err := h.Tiers.ListByEvent(ctx, eventID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}

	now := time.Now().UTC()
	views := make([]tierView, 0, len(tiers))
	for _, t := range tiers {
		views = append(views, toTierView(t, now))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event": echo.Map{
			"id":        ev.ID,
			"name":      ev.Name,
			"starts_at": ev.StartsAt,
			"ends_at":   ev.EndsAt,
		},
		"tiers": views,
	})
}
