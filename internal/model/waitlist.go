package model

import "time"

// Priority classes for waitlist ordering.  The class decides the
// insertion bucket (vip ahead of high ahead of normal); arrival order
// is preserved within a bucket.
const (
	PriorityVIP    = "vip"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

// WaitlistEntry is one person queued for an event.  TierID is nil for
// tier-agnostic entries, which may be promoted into any tier with
// capacity.  Position is a dense integer starting at 1 and unique
// within the event; positions are renumbered contiguously after every
// removal so the sequence never has gaps.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – event whose waitlist this entry is on.
//  TierID    – requested tier, nil when any tier is acceptable.
//  FullName  – name of the person queued.
//  Email     – contact address used for invitations.
//  Priority  – PriorityVIP, PriorityHigh or PriorityNormal.
//  Position  – dense 1-based position within the event's queue.
//  Notes     – optional free-form organizer notes (nullable).
//  CreatedAt – signup timestamp.
type WaitlistEntry struct {
	ID        uint64    // waitlist_entries.id
	EventID   uint64    // waitlist_entries.event_id
	TierID    *uint64   // waitlist_entries.tier_id (nullable)
	FullName  string    // waitlist_entries.full_name
	Email     string    // waitlist_entries.email
	Priority  string    // waitlist_entries.priority
	Position  int       // waitlist_entries.position
	Notes     *string   // waitlist_entries.notes (nullable)
	CreatedAt time.Time // waitlist_entries.created_at
}
