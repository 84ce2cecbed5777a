package model

import "time"

// Event represents an organizer-owned event record as stored in the
// `events` table.  Ticket tiers, promo codes and the waitlist all hang
// off an event.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user who created the event.
//  Name      – display name of the event.
//  StartsAt  – when the event begins.
//  EndsAt    – when the event ends (must be after StartsAt).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Event struct {
	ID        uint64    // events.id
	OwnerID   uint64    // events.owner_id
	Name      string    // events.name
	StartsAt  time.Time // events.starts_at
	EndsAt    time.Time // events.ends_at
	CreatedAt time.Time // events.created_at
	UpdatedAt time.Time // events.updated_at
}
