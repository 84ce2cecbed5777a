// Package repository defines sentinel errors shared across the
// repositories so handlers can distinguish failure scenarios without
// string matching.
package repository

import "errors"

// ErrConflict is returned when an update cannot be performed
// because of conflicting state, such as cancelling an order that
// was already cancelled or reusing a promo code string within an
// event. Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels, one per aggregate. Handlers translate these
// into HTTP 404 responses.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrTierNotFound  = errors.New("ticket tier not found")
	ErrCodeNotFound  = errors.New("promo code not found")
	ErrEntryNotFound = errors.New("waitlist entry not found")
	ErrOrderNotFound = errors.New("order not found")
)
