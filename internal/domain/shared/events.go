package shared

import (
	"context"
	"time"
)

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventDispatcher dispatches domain events to handlers
type EventDispatcher interface {
	Dispatch(ctx context.Context, event DomainEvent) error
	Register(eventName string, handler EventHandler)
}

// EventHandler handles domain events
type EventHandler func(ctx context.Context, event DomainEvent) error

// AllEvents registers a handler for every event name
const AllEvents = "*"

// Publish dispatches event when d is non-nil
func Publish(ctx context.Context, d EventDispatcher, event DomainEvent) {
	if d == nil {
		return
	}
	_ = d.Dispatch(ctx, event)
}

// BaseEvent carries the name and timestamp every event needs
type BaseEvent struct {
	Name string    `json:"name"`
	At   time.Time `json:"occurred_at"`
}

// NewBaseEvent creates a BaseEvent stamped with the current time
func NewBaseEvent(name string) BaseEvent {
	return BaseEvent{Name: name, At: time.Now()}
}

// EventName implements DomainEvent
func (e BaseEvent) EventName() string { return e.Name }

// OccurredAt implements DomainEvent
func (e BaseEvent) OccurredAt() time.Time { return e.At }
