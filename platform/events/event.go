// Package events provides the in-process event bus the modules communicate
// over. Domain event definitions live in internal/events; this package only
// carries the delivery machinery.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName is the subscription key, e.g. "leads.changed".
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the occurrence timestamp; embed it in event structs.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events for one subscription.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes published events to subscribed handlers by event name.
type Bus interface {
	// Publish dispatches asynchronously; handler errors are logged, never
	// returned. Delivery is unordered across events.
	Publish(ctx context.Context, event Event)

	// PublishSync runs every handler inline and returns the first error.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under the name the event reports from
	// EventName().
	Subscribe(eventName string, handler Handler)
}
