// Package events carries domain events from the service layer to whoever
// wants them: the websocket hub for live pushes, and optionally a Kafka
// topic for out-of-process consumers.
package events

import (
	"time"
)

// Event is a user-addressed domain event. UserID names the recipient;
// Type matches the notification types in models (payment_applied,
// reminder_sent, expense_added, badge_earned).
type Event struct {
	UserID    int64          `json:"userId"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher delivers an event to a user. Delivery is best effort; the
// service layer never fails an operation because a push did not land.
type Publisher interface {
	Publish(event Event) error
}

// Multi fans an event out to several publishers. The first error is
// returned but every publisher is attempted.
type Multi []Publisher

func (m Multi) Publish(event Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Discard drops every event. Used when no publisher is configured.
type Discard struct{}

func (Discard) Publish(Event) error { return nil }
