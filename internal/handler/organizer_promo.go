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

// OrganizerPromoHandler serves promo code management and the pricing
// preview for event owners.
type OrganizerPromoHandler struct {
	Events *repository.EventRepo
	Tiers  *repository.TierRepo
	Promos *repository.PromoRepo
}

func NewOrganizerPromoHandler(events *repository.EventRepo, tiers *repository.TierRepo, promos *repository.PromoRepo) *OrganizerPromoHandler {
	return &OrganizerPromoHandler{Events: events, Tiers: tiers, Promos: promos}
}

type promoReq struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"`
	MaxQuantity   *int       `json:"max_quantity"`
	TierID        *uint64    `json:"tier_id"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
}

func promoView(pc model.PromoCode) echo.Map {
	return echo.Map{
		"id":             pc.ID,
		"code":           pc.Code,
		"discount_type":  pc.DiscountType,
		"discount_value": pc.DiscountValue,
		"max_quantity":   pc.MaxQuantity,
		"tier_id":        pc.TierID,
		"starts_at":      pc.StartsAt,
		"ends_at":        pc.EndsAt,
		"is_active":      pc.IsActive,
	}
}

// CreatePromo handles POST /v1/organizer/events/:id/promos.
func (h *OrganizerPromoHandler) CreatePromo(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	var req promoReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if repository.NormalizeCode(req.Code) == "" {
		return jsonError(c, http.StatusBadRequest, "code required")
	}
	if req.DiscountType != model.DiscountPercentage && req.DiscountType != model.DiscountFixed {
		return jsonError(c, http.StatusBadRequest, "discount_type must be percentage or fixed")
	}
	if req.DiscountValue <= 0 {
		return jsonError(c, http.StatusBadRequest, "discount_value must be positive")
	}
	if req.DiscountType == model.DiscountPercentage && req.DiscountValue > 100 {
		return jsonError(c, http.StatusBadRequest, "percentage must not exceed 100")
	}
	if req.MaxQuantity != nil && *req.MaxQuantity < 1 {
		return jsonError(c, http.StatusBadRequest, "max_quantity must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}
	if req.TierID != nil {
		t, err := h.Tiers.GetByID(ctx, *req.TierID)
		if err != nil || t.EventID != eventID {
			return jsonError(c, http.StatusBadRequest, "tier_id does not belong to event")
		}
	}

	pc := model.PromoCode{
		EventID:       eventID,
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxQuantity:   req.MaxQuantity,
		TierID:        req.TierID,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		IsActive:      true,
	}
	if err := h.Promos.Create(ctx, &pc); err != nil {
		if err == repository.ErrConflict {
			return jsonError(c, http.StatusConflict, "code already exists for event")
		}
		return jsonError(c, http.StatusInternalServerError, "create promo failed")
	}
	return c.JSON(http.StatusCreated, promoView(pc))
}

// ListPromos handles GET /v1/organizer/events/:id/promos.
func (h *OrganizerPromoHandler) ListPromos(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}
	codes, err := h.Promos.ListByEvent(ctx, eventID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]echo.Map, 0, len(codes))
	for _, pc := range codes {
		out = append(out, promoView(pc))
	}
	return c.JSON(http.StatusOK, echo.Map{"promo_codes": out})
}

// DeactivatePromo handles DELETE /v1/organizer/events/:id/promos/:promoID.
func (h *OrganizerPromoHandler) DeactivatePromo(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	promoID, ok := pathID(c, "promoID")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid promo id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}
	if err := h.Promos.Deactivate(ctx, eventID, promoID); err != nil {
		if err == repository.ErrCodeNotFound {
			return jsonError(c, http.StatusNotFound, "promo code not found")
		}
		return jsonError(c, http.StatusInternalServerError, "deactivate promo failed")
	}
	return c.NoContent(http.StatusNoContent)
}

type previewReq struct {
	TierID   uint64 `json:"tier_id"`
	Quantity int    `json:"quantity"`
	Code     string `json:"code"`
}

// PreviewPrice handles POST /v1/organizer/events/:id/preview-price.  It
// runs the same validation and pricing an order would, without touching
// inventory, so organizers can sanity-check a code before publishing
// it.
func (h *OrganizerPromoHandler) PreviewPrice(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	var req previewReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		return jsonError(c, http.StatusBadRequest, "quantity must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}
	tier, err := h.Tiers.GetByID(ctx, req.TierID)
	if err != nil || tier.EventID != eventID {
		return jsonError(c, http.StatusNotFound, "tier not found")
	}

	now := time.Now().UTC()
	subtotal := tier.PriceCents * int64(req.Quantity)

	var applied *ticketing.AppliedDiscount
	if repository.NormalizeCode(req.Code) != "" {
		pc, err := h.Promos.GetByCode(ctx, eventID, req.Code)
		if err != nil {
			if err == repository.ErrCodeNotFound {
				return jsonError(c, http.StatusNotFound, "promo code not found")
			}
			return jsonError(c, http.StatusInternalServerError, "query failed")
		}
		ad, err := ticketing.ValidateCode(pc, tier.ID, req.Quantity, subtotal, now)
		if err != nil {
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		}
		applied = &ad
	}

	quote := ticketing.Price(tier, req.Quantity, applied)
	resp := echo.Map{
		"quote":  quote,
		"status": ticketing.ResolveStatus(tier, now),
	}
	if applied != nil {
		resp["code"] = applied.Code
	}
	return c.JSON(http.StatusOK, resp)
}
