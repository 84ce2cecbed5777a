package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
	"github.com/kamalraji/plan-it-together-sub006/internal/repository"
	"github.com/kamalraji/plan-it-together-sub006/internal/ticketing"
)

// OrganizerTierHandler serves tier management for event owners.
type OrganizerTierHandler struct {
	Events *repository.EventRepo
	Tiers  *repository.TierRepo
}

func NewOrganizerTierHandler(events *repository.EventRepo, tiers *repository.TierRepo) *OrganizerTierHandler {
	return &OrganizerTierHandler{Events: events, Tiers: tiers}
}

type tierReq struct {
	Name         string     `json:"name"`
	PriceCents   int64      `json:"price_cents"`
	Currency     string     `json:"currency"`
	Quantity     *int       `json:"quantity"`
	SaleStartsAt *time.Time `json:"sale_starts_at"`
	SaleEndsAt   *time.Time `json:"sale_ends_at"`
	IsActive     *bool      `json:"is_active"`
	SortOrder    int        `json:"sort_order"`
}

func (req *tierReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Name == "" {
		return "name required"
	}
	if req.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	if len(req.Currency) != 3 {
		return "currency must be a 3-letter code"
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return "quantity must not be negative"
	}
	if req.SaleStartsAt != nil && req.SaleEndsAt != nil && !req.SaleEndsAt.After(*req.SaleStartsAt) {
		return "sale_ends_at must be after sale_starts_at"
	}
	return ""
}

// CreateTier handles POST /v1/organizer/events/:id/tiers.
func (h *OrganizerTierHandler) CreateTier(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	var req tierReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if msg := req.validate(); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	t := model.TicketTier{
		EventID:      eventID,
		Name:         req.Name,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		Quantity:     req.Quantity,
		SaleStartsAt: req.SaleStartsAt,
		SaleEndsAt:   req.SaleEndsAt,
		IsActive:     active,
		SortOrder:    req.SortOrder,
	}
	if err := h.Tiers.Create(ctx, &t); err != nil {
		return jsonError(c, http.StatusInternalServerError, "create tier failed")
	}
	return c.JSON(http.StatusCreated, toTierView(t, time.Now().UTC()))
}

// UpdateTier handles PUT /v1/organizer/events/:id/tiers/:tierID.  The
// sold count cannot be edited through this endpoint; only the ledger
// moves it.
func (h *OrganizerTierHandler) UpdateTier(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	tierID, ok := pathID(c, "tierID")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid tier id")
	}
	var req tierReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if msg := req.validate(); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}
	cur, err := h.Tiers.GetByID(ctx, tierID)
	if err != nil || cur.EventID != eventID {
		return jsonError(c, http.StatusNotFound, "tier not found")
	}
	// Shrinking capacity below sold_count would make the ledger
	// invariant unsatisfiable for already-sold units.
	if req.Quantity != nil && *req.Quantity < cur.SoldCount {
		return jsonError(c, http.StatusConflict, "quantity below sold count")
	}

	active := cur.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}
	t := model.TicketTier{
		ID:           tierID,
		EventID:      eventID,
		Name:         req.Name,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		Quantity:     req.Quantity,
		SaleStartsAt: req.SaleStartsAt,
		SaleEndsAt:   req.SaleEndsAt,
		IsActive:     active,
		SortOrder:    req.SortOrder,
	}
	if err := h.Tiers.Update(ctx, t); err != nil {
		if err == repository.ErrTierNotFound {
			return jsonError(c, http.StatusNotFound, "tier not found")
		}
		return jsonError(c, http.StatusInternalServerError, "update tier failed")
	}
	t.SoldCount = cur.SoldCount
	return c.JSON(http.StatusOK, toTierView(t, time.Now().UTC()))
}

// DeactivateTier handles DELETE /v1/organizer/events/:id/tiers/:tierID.
// Tiers are retired, never hard-deleted, so historical orders keep
// their reference and the tier resolves as inactive from then on.
func (h *OrganizerTierHandler) DeactivateTier(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	tierID, ok := pathID(c, "tierID")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid tier id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}
	if err := h.Tiers.Deactivate(ctx, eventID, tierID); err != nil {
		if err == repository.ErrTierNotFound {
			return jsonError(c, http.StatusNotFound, "tier not found")
		}
		return jsonError(c, http.StatusInternalServerError, "deactivate tier failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTiersDetailed handles GET /v1/organizer/events/:id/tiers.  Unlike
// the public listing this one includes sold counts.
func (h *OrganizerTierHandler) ListTiersDetailed(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}
	tiers, err := h.Tiers.ListByEvent(ctx, eventID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}

	now := time.Now().UTC()
	out := make([]echo.Map, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, echo.Map{
			"id":          t.ID,
			"name":        t.Name,
			"price_cents": t.PriceCents,
			"currency":    t.Currency,
			"quantity":    t.Quantity,
			"sold_count":  t.SoldCount,
			"is_active":   t.IsActive,
			"sort_order":  t.SortOrder,
			"status":      ticketing.ResolveStatus(t, now),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"tiers": out})
}
