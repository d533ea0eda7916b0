// Package ports define the EventBus interface for event-driven communication.
// The event bus lets the transport controller notify the presenter without callbacks.
package ports

import (
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
//
// The event bus decouples event producers (services) from event consumers (presenter, logging).
// Multiple subscribers can listen to the same event, and subscribers don't know about publishers.
//
// Thread-safety: Implementations must be thread-safe as events are published from the
// decode goroutine, the render loop and UI callbacks.
//
// Example usage:
//
//	// In service: Publish an event
//	bus.Publish(domain.NewPlaybackStartedEvent(projection))
//
//	// In the presenter: Subscribe to events
//	subID := bus.Subscribe(domain.EventPlaybackStarted, func(event domain.Event) {
//	    view.SetPlayState(true)
//	})
//
//	// Later: Unsubscribe
//	bus.Unsubscribe(subID)
type EventBus interface {
	// Publish publishes an event to all subscribers of that event type.
	// Handlers should return quickly; Publish is called from the render loop.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// Each subscription gets a unique SubscriptionID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// If the subscription ID is invalid or already unsubscribed, this is a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events regardless of type.
	// This is useful for logging and debugging.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers returns true if there are any active subscriptions for the given event type.
	// The render loop uses it to skip building progress events nobody listens to.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and cleans up resources.
	Close() error
}
