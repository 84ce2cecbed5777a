package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
	"github.com/kamalraji/plan-it-together-sub006/internal/repository"
)

// OrganizerEventHandler serves event CRUD for organizers.
type OrganizerEventHandler struct {
	Events *repository.EventRepo
}

func NewOrganizerEventHandler(events *repository.EventRepo) *OrganizerEventHandler {
	return &OrganizerEventHandler{Events: events}
}

// ownedEvent loads an event and verifies the caller owns it.  On
// failure the error response has already been written and ok is false.
func ownedEvent(ctx context.Context, c echo.Context, events *repository.EventRepo, eventID uint64) (model.Event, bool) {
	userID, err := getUserID(c)
	if err != nil {
		_ = jsonError(c, http.StatusUnauthorized, "unauthorized")
		return model.Event{}, false
	}
	ev, err := events.GetByID(ctx, eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			_ = jsonError(c, http.StatusNotFound, "event not found")
		} else {
			_ = jsonError(c, http.StatusInternalServerError, "query failed")
		}
		return model.Event{}, false
	}
	if ev.OwnerID != userID {
		_ = jsonError(c, http.StatusForbidden, "not your event")
		return model.Event{}, false
	}
	return ev, true
}

type createEventReq struct {
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// CreateEvent handles POST /v1/organizer/events.
func (h *OrganizerEventHandler) CreateEvent(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return jsonError(c, http.StatusBadRequest, "name required")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return jsonError(c, http.StatusBadRequest, "ends_at must be after starts_at")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := model.Event{OwnerID: userID, Name: req.Name, StartsAt: req.StartsAt.UTC(), EndsAt: req.EndsAt.UTC()}
	if err := h.Events.Create(ctx, &ev); err != nil {
		return jsonError(c, http.StatusInternalServerError, "create event failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":        ev.ID,
		"name":      ev.Name,
		"starts_at": ev.StartsAt,
		"ends_at":   ev.EndsAt,
	})
}

// ListMyEvents handles GET /v1/organizer/events.
func (h *OrganizerEventHandler) ListMyEvents(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListByOwner(ctx, userID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]echo.Map, 0, len(events))
	for _, ev := range events {
		out = append(out, echo.Map{
			"id":        ev.ID,
			"name":      ev.Name,
			"starts_at": ev.StartsAt,
			"ends_at":   ev.EndsAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}
