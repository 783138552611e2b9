// Package queue defines message payloads exchanged over the message broker
// and the publishers/consumer that move them.
package queue

import "context"

// Event types published after rental transitions.
const (
	EventRented   = "rental.rented"
	EventReturned = "rental.returned"
)

// RentalEvent is published when a game is rented or returned. It carries
// enough information for downstream consumers to log or trigger analytics
// without querying the primary database.
type RentalEvent struct {
	Type       string `json:"type"`
	RentalID   uint64 `json:"rental_id"`
	GameID     uint64 `json:"game_id"`
	GameTitle  string `json:"game_title"`
	Username   string `json:"username"`
	OccurredAt string `json:"occurred_at"` // RFC3339, UTC
}

// Publisher sends rental events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev RentalEvent) error
}

// Noop discards every event. Used when EVENT_BROKER=none.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, RentalEvent) error { return nil }
