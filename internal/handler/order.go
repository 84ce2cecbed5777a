package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
	"github.com/kamalraji/plan-it-together-sub006/internal/queue"
	"github.com/kamalraji/plan-it-together-sub006/internal/repository"
	queuepublisher "github.com/kamalraji/plan-it-together-sub006/internal/service"
	"github.com/kamalraji/plan-it-together-sub006/internal/ticketing"
)

// OrderHandler serves the purchase flow: quote, atomic reservation and
// order creation in one transaction, plus cancellation and listing.
type OrderHandler struct {
	Events *repository.EventRepo
	Tiers  *repository.TierRepo
	Promos *repository.PromoRepo
	Orders *repository.OrderRepo
}

func NewOrderHandler(events *repository.EventRepo, tiers *repository.TierRepo, promos *repository.PromoRepo, orders *repository.OrderRepo) *OrderHandler {
	return &OrderHandler{Events: events, Tiers: tiers, Promos: promos, Orders: orders}
}

type createOrderReq struct {
	TierID   uint64 `json:"tier_id"`
	Quantity int    `json:"quantity"`
	Code     string `json:"code"`
}

// CreateOrder handles POST /v1/events/:id/orders.  The capacity check
// and the sold-count increment are one conditional update inside the
// same transaction as the order insert, so concurrent purchases of the
// last units can never oversell and a failed insert rolls the
// reservation back with it.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	userID, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		return jsonError(c, http.StatusBadRequest, "quantity must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tier, err := h.Tiers.GetByID(ctx, req.TierID)
	if err != nil {
		if err == repository.ErrTierNotFound {
			return jsonError(c, http.StatusNotFound, "tier not found")
		}
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	if tier.EventID != eventID {
		return jsonError(c, http.StatusNotFound, "tier not found")
	}

	now := time.Now().UTC()
	switch status := ticketing.ResolveStatus(tier, now); status {
	case ticketing.StatusOnSale:
	case ticketing.StatusSoldOut:
		return jsonError(c, http.StatusConflict, "tier is sold out")
	default:
		return jsonError(c, http.StatusConflict, "tier is not on sale: "+string(status))
	}

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

	tx, err := h.Tiers.DB().BeginTx(ctx, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.Tiers.TxLedger(tx).Reserve(ctx, tier.ID, req.Quantity); err != nil {
		var capErr *ticketing.InsufficientCapacityError
		if errors.As(err, &capErr) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":     "insufficient capacity",
				"requested": capErr.Requested,
				"remaining": capErr.Remaining,
			})
		}
		if err == repository.ErrTierNotFound {
			return jsonError(c, http.StatusNotFound, "tier not found")
		}
		return jsonError(c, http.StatusInternalServerError, "reserve failed")
	}

	order := model.Order{
		Reference:     uuid.NewString(),
		UserID:        userID,
		EventID:       eventID,
		TierID:        tier.ID,
		Quantity:      req.Quantity,
		SubtotalCents: quote.SubtotalCents,
		DiscountCents: quote.DiscountCents,
		TotalCents:    quote.TotalCents,
		Currency:      quote.Currency,
		Status:        model.OrderConfirmed,
	}
	if applied != nil {
		order.PromoCodeID = &applied.CodeID
	}
	if err := h.Orders.CreateTx(ctx, tx, &order); err != nil {
		return jsonError(c, http.StatusInternalServerError, "create order failed")
	}
	if err := tx.Commit(); err != nil {
		return jsonError(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	go func(ev queue.OrderConfirmedEvent) {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = queuepublisher.PublishOrderConfirmed(pubCtx, ev)
	}(queue.OrderConfirmedEvent{
		OrderID:     order.ID,
		Reference:   order.Reference,
		UserID:      order.UserID,
		EventID:     order.EventID,
		TierID:      order.TierID,
		Quantity:    order.Quantity,
		TotalCents:  order.TotalCents,
		Currency:    order.Currency,
		ConfirmedAt: now.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"id":        order.ID,
		"reference": order.Reference,
		"status":    order.Status,
		"quote":     quote,
	})
}

// CancelOrder handles DELETE /v1/orders/:id.  The status flip and the
// capacity release share a transaction; the CONFIRMED guard on the
// update makes a double cancel a conflict instead of a double release.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	orderID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid order id")
	}
	userID, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			return jsonError(c, http.StatusNotFound, "order not found")
		}
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	if order.UserID != userID {
		return jsonError(c, http.StatusForbidden, "not your order")
	}

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Orders.CancelTx(ctx, tx, orderID); err != nil {
		if err == repository.ErrConflict {
			return jsonError(c, http.StatusConflict, "order already cancelled")
		}
		return jsonError(c, http.StatusInternalServerError, "cancel failed")
	}
	if err := h.Tiers.TxLedger(tx).Release(ctx, order.TierID, order.Quantity); err != nil {
		return jsonError(c, http.StatusInternalServerError, "release failed")
	}
	if err := tx.Commit(); err != nil {
		return jsonError(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"id": orderID, "status": model.OrderCancelled})
}

// ListMyOrders handles GET /v1/my-orders.
func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, userID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]echo.Map, 0, len(orders))
	for _, o := range orders {
		out = append(out, echo.Map{
			"id":             o.ID,
			"reference":      o.Reference,
			"event_id":       o.EventID,
			"tier_id":        o.TierID,
			"quantity":       o.Quantity,
			"subtotal_cents": o.SubtotalCents,
			"discount_cents": o.DiscountCents,
			"total_cents":    o.TotalCents,
			"currency":       o.Currency,
			"status":         o.Status,
			"created_at":     o.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}
