// Package notify provides notification dispatching for cookbook events.
package notify

import (
	"context"
	"time"
)

// Event represents a notification event with all context needed for formatting.
type Event struct {
	// Type is the event type (created, updated, deleted, rated, refresh)
	Type string

	// Recipe is the display name of the recipe the event is about
	Recipe string

	// RecipeID is the server ID, empty for a recipe that was never saved
	RecipeID string

	// Rating is the new star rating for rated events
	Rating int

	// Timestamp is when the event occurred
	Timestamp time.Time

	// Success indicates if the operation succeeded
	Success bool

	// Error contains error details if the operation failed
	Error string

	// Transient marks a failure that may succeed if tried again
	Transient bool
}

// Notifier receives events from the recipe components.
type Notifier interface {
	Notify(ctx context.Context, event *Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event *Event)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, event *Event) {
	f(ctx, event)
}

// Discard is a Notifier that drops every event.
var Discard Notifier = NotifierFunc(func(context.Context, *Event) {})

// Sender is the interface for notification senders.
type Sender interface {
	// Send sends a notification for the given event.
	// Returns an error if the notification could not be sent.
	Send(ctx context.Context, event *Event) error

	// Name returns the sender's name for logging purposes.
	Name() string
}

// Event types that can trigger notifications.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
	EventRated   = "rated"
	EventRefresh = "refresh"
)

// NewEvent creates a new event with the given type and sets the timestamp.
func NewEvent(eventType string) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Success:   true,
	}
}

// WithRecipe sets the recipe display name and ID on the event.
func (e *Event) WithRecipe(name, id string) *Event {
	e.Recipe = name
	e.RecipeID = id

	return e
}

// WithRating sets the rating on the event.
func (e *Event) WithRating(rating int) *Event {
	e.Rating = rating
	return e
}

// WithError sets the error on the event and marks it as failed.
func (e *Event) WithError(err string) *Event {
	e.Error = err
	e.Success = false

	return e
}

// WithTransient marks a failed event as retryable.
func (e *Event) WithTransient(transient bool) *Event {
	e.Transient = transient
	return e
}
