// Package eventbus provides implementations of the EventBus interface.
// This package contains the synchronous event bus implementation.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

// ErrClosed is returned by Close when the bus was already closed.
var ErrClosed = errors.New("event bus already closed")

// SyncEventBus is a synchronous implementation of the EventBus interface.
// Events are delivered to handlers on the publishing goroutine, in subscription order.
//
// Thread-safety: This implementation is thread-safe. The render loop, the decode
// goroutine and UI callbacks publish concurrently.
type SyncEventBus struct {
	logger *slog.Logger

	// subscribers map event types to their subscriptions
	subscribers map[domain.EventType][]subscription

	// wildcard contains handlers that receive all events
	wildcard []subscription

	// mu protects subscribers, wildcard and closed
	mu sync.RWMutex

	idCounter atomic.Uint64
	closed    bool
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{
		subscribers: make(map[domain.EventType][]subscription),
	}
}

// SetLogger sets the logger for this event bus.
// This should be called after construction before using the event bus.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger
}

// Publish delivers an event to every subscriber of its type, then to wildcard subscribers.
// Publishing on a closed bus does nothing. A panicking handler is logged and
// does not stop delivery to the others.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	typed := append([]subscription(nil), bus.subscribers[event.Type()]...)
	all := append([]subscription(nil), bus.wildcard...)
	logger := bus.logger
	bus.mu.RUnlock()

	for _, sub := range typed {
		bus.callHandler(logger, sub, event)
	}
	for _, sub := range all {
		bus.callHandler(logger, sub, event)
	}
}

func (bus *SyncEventBus) callHandler(logger *slog.Logger, sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()

	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// Panics if the handler is nil or the bus is closed.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(fmt.Sprintf("sub-%d", bus.idCounter.Add(1)))
	bus.subscribers[eventType] = append(bus.subscribers[eventType], subscription{id: id, handler: handler})

	return id
}

// SubscribeAll registers a handler that receives all events regardless of type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(fmt.Sprintf("sub-all-%d", bus.idCounter.Add(1)))
	bus.wildcard = append(bus.wildcard, subscription{id: id, handler: handler})

	return id
}

// Unsubscribe removes a previously registered event handler.
// Delivery order of the remaining subscriptions is preserved.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for eventType, subs := range bus.subscribers {
		if i := indexOf(subs, id); i >= 0 {
			bus.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}

	if i := indexOf(bus.wildcard, id); i >= 0 {
		bus.wildcard = append(bus.wildcard[:i:i], bus.wildcard[i+1:]...)
	}
}

func indexOf(subs []subscription, id domain.SubscriptionID) int {
	for i, sub := range subs {
		if sub.id == id {
			return i
		}
	}
	return -1
}

// HasSubscribers returns true if any handler would receive an event of the given type.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return len(bus.subscribers[eventType]) > 0 || len(bus.wildcard) > 0
}

// Close shuts down the event bus and clears all subscriptions.
// Returns ErrClosed if already closed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}

	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.wildcard = nil

	return nil
}

// SubscriberCount returns the number of active subscriptions for debugging.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	count := len(bus.wildcard)
	for _, subs := range bus.subscribers {
		count += len(subs)
	}
	return count
}

// Verify that SyncEventBus implements the EventBus interface
var _ ports.EventBus = (*SyncEventBus)(nil)
