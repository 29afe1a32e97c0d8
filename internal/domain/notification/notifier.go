package notification

import (
	"context"
	"time"
)

// Event is emitted after a scheme transition has been committed.
type Event struct {
	SchemeID   string    `json:"schemeId"`
	Type       string    `json:"type"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	ActorID    string    `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Notifier delivers user-visible confirmation messages.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
