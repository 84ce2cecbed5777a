package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
	"github.com/kamalraji/plan-it-together-sub006/internal/queue"
	"github.com/kamalraji/plan-it-together-sub006/internal/repository"
	queuepublisher "github.com/kamalraji/plan-it-together-sub006/internal/service"
	"github.com/kamalraji/plan-it-together-sub006/internal/ticketing"
)

// WaitlistHandler serves waitlist signup, organizer queue management
// and promotion.  Every mutation follows the same shape: lock the
// event's entries inside a transaction, rebuild the in-memory queue,
// mutate it, write the renumbered positions back and commit.  The row
// locks serialize concurrent mutations per event, so the dense
// position invariant holds in storage exactly as it does in memory.
type WaitlistHandler struct {
	Events   *repository.EventRepo
	Tiers    *repository.TierRepo
	Waitlist *repository.WaitlistRepo
}

func NewWaitlistHandler(events *repository.EventRepo, tiers *repository.TierRepo, waitlist *repository.WaitlistRepo) *WaitlistHandler {
	return &WaitlistHandler{Events: events, Tiers: tiers, Waitlist: waitlist}
}

func entryView(e model.WaitlistEntry) echo.Map {
	return echo.Map{
		"id":        e.ID,
		"tier_id":   e.TierID,
		"full_name": e.FullName,
		"email":     e.Email,
		"priority":  e.Priority,
		"position":  e.Position,
		"notes":     e.Notes,
	}
}

type joinReq struct {
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Priority string  `json:"priority"`
	TierID   *uint64 `json:"tier_id"`
	Notes    *string `json:"notes"`
}

// Join handles POST /v1/events/:id/waitlist.  Signup is public: the
// person queues behind everyone of equal or higher priority and ahead
// of strictly lower priority, preserving arrival order within a class.
func (h *WaitlistHandler) Join(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	var req joinReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" {
		return jsonError(c, http.StatusBadRequest, "full_name/email required")
	}
	priority := strings.ToLower(strings.TrimSpace(req.Priority))
	switch priority {
	case "":
		priority = model.PriorityNormal
	case model.PriorityVIP, model.PriorityHigh, model.PriorityNormal:
	default:
		return jsonError(c, http.StatusBadRequest, "priority must be vip, high or normal")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return jsonError(c, http.StatusNotFound, "event not found")
		}
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	if req.TierID != nil {
		t, err := h.Tiers.GetByID(ctx, *req.TierID)
		if err != nil || t.EventID != eventID {
			return jsonError(c, http.StatusBadRequest, "tier_id does not belong to event")
		}
	}

	tx, err := h.Waitlist.DB().BeginTx(ctx, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	entries, err := h.Waitlist.ListByEventTx(ctx, tx, eventID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	q, err := ticketing.NewQueue(eventID, entries)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "waitlist positions corrupted")
	}

	stored, err := q.Add(model.WaitlistEntry{
		TierID:   req.TierID,
		FullName: req.FullName,
		Email:    req.Email,
		Priority: priority,
		Notes:    req.Notes,
	})
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "waitlist positions corrupted")
	}
	if err := h.Waitlist.InsertTx(ctx, tx, &stored); err != nil {
		return jsonError(c, http.StatusInternalServerError, "insert failed")
	}
	if err := h.persistPositions(ctx, tx, eventID, q); err != nil {
		return jsonError(c, http.StatusInternalServerError, "update positions failed")
	}
	if err := tx.Commit(); err != nil {
		return jsonError(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return c.JSON(http.StatusCreated, entryView(stored))
}

// persistPositions writes back the positions of every surviving entry.
// Entries without an ID yet (freshly added, inserted separately) are
// skipped.
func (h *WaitlistHandler) persistPositions(ctx context.Context, tx *sql.Tx, eventID uint64, q *ticketing.Queue) error {
	var persisted []model.WaitlistEntry
	for _, e := range q.Entries() {
		if e.ID != 0 {
			persisted = append(persisted, e)
		}
	}
	return h.Waitlist.UpdatePositionsTx(ctx, tx, eventID, persisted)
}

// List handles GET /v1/organizer/events/:id/waitlist.
func (h *WaitlistHandler) List(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}
	entries, err := h.Waitlist.ListByEvent(ctx, eventID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]echo.Map, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": out})
}

// MoveUp handles POST /v1/organizer/events/:id/waitlist/:entryID/move-up.
func (h *WaitlistHandler) MoveUp(c echo.Context) error {
	return h.move(c, func(q *ticketing.Queue, id uint64) (bool, error) { return q.MoveUp(id) })
}

// MoveDown handles POST /v1/organizer/events/:id/waitlist/:entryID/move-down.
func (h *WaitlistHandler) MoveDown(c echo.Context) error {
	return h.move(c, func(q *ticketing.Queue, id uint64) (bool, error) { return q.MoveDown(id) })
}

// move runs a single-step reorder under the event's row locks.  Moves
// across priority classes are allowed; manual ordering is an operator
// override.
func (h *WaitlistHandler) move(c echo.Context, op func(*ticketing.Queue, uint64) (bool, error)) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	entryID, ok := pathID(c, "entryID")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid entry id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}

	tx, err := h.Waitlist.DB().BeginTx(ctx, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	entries, err := h.Waitlist.ListByEventTx(ctx, tx, eventID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	q, err := ticketing.NewQueue(eventID, entries)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "waitlist positions corrupted")
	}

	moved, err := op(q, entryID)
	if err != nil {
		if err == ticketing.ErrEntryNotFound {
			return jsonError(c, http.StatusNotFound, "entry not found")
		}
		return jsonError(c, http.StatusInternalServerError, "reorder failed")
	}
	if moved {
		if err := h.persistPositions(ctx, tx, eventID, q); err != nil {
			return jsonError(c, http.StatusInternalServerError, "update positions failed")
		}
	}
	if err := tx.Commit(); err != nil {
		return jsonError(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"moved": moved})
}

// Remove handles DELETE /v1/organizer/events/:id/waitlist/:entryID.
// The survivors are renumbered in the same transaction so positions
// stay dense.
func (h *WaitlistHandler) Remove(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	entryID, ok := pathID(c, "entryID")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid entry id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, ok := ownedEvent(ctx, c, h.Events, eventID); !ok {
		return nil
	}

	tx, err := h.Waitlist.DB().BeginTx(ctx, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	entries, err := h.Waitlist.ListByEventTx(ctx, tx, eventID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	q, err := ticketing.NewQueue(eventID, entries)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "waitlist positions corrupted")
	}

	if _, err := q.Remove(entryID); err != nil {
		if err == ticketing.ErrEntryNotFound {
			return jsonError(c, http.StatusNotFound, "entry not found")
		}
		return jsonError(c, http.StatusInternalServerError, "remove failed")
	}
	if err := h.Waitlist.DeleteTx(ctx, tx, entryID); err != nil {
		return jsonError(c, http.StatusInternalServerError, "delete failed")
	}
	if err := h.persistPositions(ctx, tx, eventID, q); err != nil {
		return jsonError(c, http.StatusInternalServerError, "update positions failed")
	}
	if err := tx.Commit(); err != nil {
		return jsonError(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return c.NoContent(http.StatusNoContent)
}

// Promote handles POST /v1/organizer/events/:id/waitlist/:entryID/promote.
// The reservation, the entry removal and the renumbering commit
// together; on capacity failure everything stays as it was and the
// entry keeps its place.
func (h *WaitlistHandler) Promote(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	entryID, ok := pathID(c, "entryID")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid entry id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ev, ok := ownedEvent(ctx, c, h.Events, eventID)
	if !ok {
		return nil
	}

	tx, err := h.Waitlist.DB().BeginTx(ctx, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	q, tiers, err := h.lockQueueAndTiers(ctx, tx, eventID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	coord := ticketing.NewCoordinator(h.Tiers.TxLedger(tx))
	promo, err := coord.Promote(ctx, q, tiers, entryID)
	if err != nil {
		return h.promoteError(c, err)
	}
	if err := h.Waitlist.DeleteTx(ctx, tx, entryID); err != nil {
		return jsonError(c, http.StatusInternalServerError, "delete failed")
	}
	if err := h.persistPositions(ctx, tx, eventID, q); err != nil {
		return jsonError(c, http.StatusInternalServerError, "update positions failed")
	}
	if err := tx.Commit(); err != nil {
		return jsonError(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	h.publishInvites(ev, []ticketing.Promotion{promo})

	return c.JSON(http.StatusOK, echo.Map{
		"entry":   entryView(promo.Entry),
		"tier_id": promo.TierID,
	})
}

type promoteBatchReq struct {
	EntryIDs []uint64 `json:"entry_ids"`
}

// PromoteBatch handles POST /v1/organizer/events/:id/waitlist/promote-batch.
// Entries are processed in the given order and partial success is the
// expected outcome: each result carries its own promotion or failure,
// and promoted entries stay promoted when a later one fails.
func (h *WaitlistHandler) PromoteBatch(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}
	var req promoteBatchReq
	if err := c.Bind(&req); err != nil || len(req.EntryIDs) == 0 {
		return jsonError(c, http.StatusBadRequest, "entry_ids required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	ev, ok := ownedEvent(ctx, c, h.Events, eventID)
	if !ok {
		return nil
	}

	results, promotions, err := h.runPromotions(ctx, eventID, func(coord *ticketing.Coordinator, q *ticketing.Queue, tiers []model.TicketTier) []ticketing.BulkResult {
		return coord.BulkPromote(ctx, q, tiers, req.EntryIDs)
	})
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	h.publishInvites(ev, promotions)
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// SendInvites handles POST /v1/organizer/events/:id/waitlist/send-invites.
// It promotes as many entries as the event has free capacity, in queue
// order, and publishes one invitation per promoted entry after commit.
func (h *WaitlistHandler) SendInvites(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid event id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	ev, ok := ownedEvent(ctx, c, h.Events, eventID)
	if !ok {
		return nil
	}

	results, promotions, err := h.runPromotions(ctx, eventID, func(coord *ticketing.Coordinator, q *ticketing.Queue, tiers []model.TicketTier) []ticketing.BulkResult {
		return coord.SendInvites(ctx, q, tiers)
	})
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	h.publishInvites(ev, promotions)
	return c.JSON(http.StatusOK, echo.Map{
		"invited": len(promotions),
		"results": results,
	})
}

// runPromotions wraps a coordinator bulk operation in a transaction:
// lock queue and tiers, run the operation, delete promoted entries,
// renumber, commit.  It returns the JSON-ready per-entry results and
// the successful promotions for post-commit publishing.
func (h *WaitlistHandler) runPromotions(ctx context.Context, eventID uint64, run func(*ticketing.Coordinator, *ticketing.Queue, []model.TicketTier) []ticketing.BulkResult) ([]echo.Map, []ticketing.Promotion, error) {
	tx, err := h.Waitlist.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, errors.New("begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	q, tiers, err := h.lockQueueAndTiers(ctx, tx, eventID)
	if err != nil {
		return nil, nil, err
	}

	coord := ticketing.NewCoordinator(h.Tiers.TxLedger(tx))
	bulk := run(coord, q, tiers)

	var promotions []ticketing.Promotion
	results := make([]echo.Map, 0, len(bulk))
	for _, r := range bulk {
		if r.Err != nil {
			results = append(results, echo.Map{
				"entry_id": r.EntryID,
				"promoted": false,
				"error":    r.Err.Error(),
			})
			continue
		}
		if err := h.Waitlist.DeleteTx(ctx, tx, r.EntryID); err != nil {
			return nil, nil, errors.New("delete failed")
		}
		promotions = append(promotions, r.Promotion)
		results = append(results, echo.Map{
			"entry_id": r.EntryID,
			"promoted": true,
			"tier_id":  r.Promotion.TierID,
		})
	}
	if err := h.persistPositions(ctx, tx, eventID, q); err != nil {
		return nil, nil, errors.New("update positions failed")
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, errors.New("commit failed")
	}
	committed = true
	return results, promotions, nil
}

func (h *WaitlistHandler) lockQueueAndTiers(ctx context.Context, tx *sql.Tx, eventID uint64) (*ticketing.Queue, []model.TicketTier, error) {
	entries, err := h.Waitlist.ListByEventTx(ctx, tx, eventID)
	if err != nil {
		return nil, nil, errors.New("query failed")
	}
	q, err := ticketing.NewQueue(eventID, entries)
	if err != nil {
		return nil, nil, errors.New("waitlist positions corrupted")
	}
	tiers, err := h.Tiers.ListByEventTx(ctx, tx, eventID)
	if err != nil {
		return nil, nil, errors.New("query failed")
	}
	return q, tiers, nil
}

func (h *WaitlistHandler) promoteError(c echo.Context, err error) error {
	var capErr *ticketing.InsufficientCapacityError
	switch {
	case errors.As(err, &capErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "insufficient capacity",
			"remaining": capErr.Remaining,
		})
	case err == ticketing.ErrEntryNotFound:
		return jsonError(c, http.StatusNotFound, "entry not found")
	case err == ticketing.ErrUnknownTier:
		return jsonError(c, http.StatusConflict, "requested tier no longer exists")
	default:
		return jsonError(c, http.StatusInternalServerError, "promote failed")
	}
}

// publishInvites fires one WaitlistInvitedEvent per promotion after the
// transaction has committed.  Publishing is best-effort; failures are
// logged inside the publisher and never affect the response.
func (h *WaitlistHandler) publishInvites(ev model.Event, promotions []ticketing.Promotion) {
	if len(promotions) == 0 {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	events := make([]queue.WaitlistInvitedEvent, 0, len(promotions))
	for _, p := range promotions {
		events = append(events, queue.WaitlistInvitedEvent{
			EntryID:   p.Entry.ID,
			EventID:   ev.ID,
			EventName: ev.Name,
			TierID:    p.TierID,
			FullName:  p.Entry.FullName,
			Email:     p.Entry.Email,
			Priority:  p.Entry.Priority,
			InvitedAt: now,
		})
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, e := range events {
			_ = queuepublisher.PublishWaitlistInvited(ctx, e)
		}
	}()
}
