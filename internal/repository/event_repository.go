package repository

import (
	"context"
	"database/sql"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

// EventRepo encapsulates database operations for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo given a DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *EventRepo) DB() *sql.DB { return r.db }

// Create inserts an event and populates its ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (owner_id, name, starts_at, ends_at) VALUES (?,?,?,?)`,
		e.OwnerID, e.Name, e.StartsAt.UTC(), e.EndsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID fetches a single event.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	var e model.Event
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, starts_at, ends_at, created_at, updated_at
		 FROM events WHERE id = ? LIMIT 1`, id).
		Scan(&e.ID, &e.OwnerID, &e.Name, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Event{}, ErrEventNotFound
	}
	return e, err
}

// ListByOwner returns all events created by a user, newest first.
func (r *EventRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, starts_at, ends_at, created_at, updated_at
		 FROM events WHERE owner_id = ? ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
