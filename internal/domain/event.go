package domain

import (
	"context"
	"time"
)

// Routing keys of storefront events.
const (
	EventLoggedIn    = "session.logged_in"
	EventLoggedOut   = "session.logged_out"
	EventCartSaved   = "cart.saved"
	EventOrderPlaced = "order.placed"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// EventPublisher delivers events to observers outside the process.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
