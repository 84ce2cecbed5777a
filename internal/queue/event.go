// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns invitation events into
// an append-only invite log.
package queue

// Queue names used on the broker.  The routing key equals the queue
// name; everything goes through the default exchange.
const (
	WaitlistInvitedQueue = "waitlist.invited"
	OrderConfirmedQueue  = "order.confirmed"
)

// WaitlistInvitedEvent is published when a waitlist entry has been
// promoted: a unit is already reserved for the person and the entry
// has left the queue.  It carries enough for downstream invitation
// dispatch without querying the primary database.
type WaitlistInvitedEvent struct {
	EntryID   uint64 `json:"entry_id"`
	EventID   uint64 `json:"event_id"`
	EventName string `json:"event_name"`
	TierID    uint64 `json:"tier_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Priority  string `json:"priority"`
	InvitedAt string `json:"invited_at"`
}

// OrderConfirmedEvent is published after a purchase commits.
type OrderConfirmedEvent struct {
	OrderID     uint64 `json:"order_id"`
	Reference   string `json:"reference"`
	UserID      uint64 `json:"user_id"`
	EventID     uint64 `json:"event_id"`
	TierID      uint64 `json:"tier_id"`
	Quantity    int    `json:"quantity"`
	TotalCents  int64  `json:"total_cents"`
	Currency    string `json:"currency"`
	ConfirmedAt string `json:"confirmed_at"`
}
