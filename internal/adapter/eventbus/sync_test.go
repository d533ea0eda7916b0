package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/logger"
)

func TestNewSyncEventBus(t *testing.T) {
	bus := NewSyncEventBus()

	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", bus.SubscriberCount())
	}
	if bus.closed {
		t.Error("New event bus should not be closed")
	}
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received domain.Event
	calls := 0
	subID := bus.Subscribe(domain.EventVolumeChanged, func(event domain.Event) {
		received = event
		calls++
	})
	if subID == "" {
		t.Fatal("Subscribe returned empty subscription ID")
	}

	bus.Publish(domain.NewVolumeChangedEvent(0.4))

	if calls != 1 {
		t.Fatalf("Expected handler to be called once, got %d", calls)
	}
	e, ok := received.(domain.VolumeChangedEvent)
	if !ok {
		t.Fatalf("Expected VolumeChangedEvent, got %T", received)
	}
	if e.Volume != 0.4 {
		t.Errorf("Expected volume 0.4, got %v", e.Volume)
	}
}

func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var started, paused int
	bus.Subscribe(domain.EventPlaybackStarted, func(domain.Event) { started++ })
	bus.Subscribe(domain.EventPlaybackPaused, func(domain.Event) { paused++ })

	bus.Publish(domain.NewPlaybackStartedEvent(domain.TimeProjection{}))
	bus.Publish(domain.NewPlaybackStartedEvent(domain.TimeProjection{}))
	bus.Publish(domain.NewPlaybackPausedEvent(domain.TimeProjection{}))

	if started != 2 || paused != 1 {
		t.Errorf("Expected 2 started and 1 paused, got %d and %d", started, paused)
	}
}

func TestDeliveryOrder(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var order []int
	for i := range 3 {
		bus.Subscribe(domain.EventSeekCompleted, func(domain.Event) { order = append(order, i) })
	}
	bus.SubscribeAll(func(domain.Event) { order = append(order, 99) })

	bus.Publish(domain.NewSeekCompletedEvent(domain.TimeProjection{}))

	want := []int{0, 1, 2, 99}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, order)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var first, second int
	id := bus.Subscribe(domain.EventTimeProgress, func(domain.Event) { first++ })
	bus.Subscribe(domain.EventTimeProgress, func(domain.Event) { second++ })

	bus.Unsubscribe(id)
	bus.Publish(domain.NewTimeProgressEvent(domain.TimeProjection{}))

	if first != 0 || second != 1 {
		t.Errorf("Expected 0 and 1 calls, got %d and %d", first, second)
	}

	// Unknown IDs are ignored.
	bus.Unsubscribe("sub-unknown")
	if bus.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", bus.SubscriberCount())
	}
}

func TestSubscribeAllAndHasSubscribers(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	if bus.HasSubscribers(domain.EventTimeProgress) {
		t.Error("Expected no subscribers")
	}

	var seen []domain.EventType
	id := bus.SubscribeAll(func(e domain.Event) { seen = append(seen, e.Type()) })

	if !bus.HasSubscribers(domain.EventTimeProgress) {
		t.Error("Wildcard subscriber should count for every type")
	}

	bus.Publish(domain.NewVolumeChangedEvent(1))
	bus.Publish(domain.NewDecodeFailedEvent("x.mp3", domain.ErrUnsupportedFormat))

	if len(seen) != 2 || seen[1] != domain.EventDecodeFailed {
		t.Errorf("Unexpected wildcard deliveries: %v", seen)
	}

	bus.Unsubscribe(id)
	if bus.HasSubscribers(domain.EventTimeProgress) {
		t.Error("Expected no subscribers after unsubscribe")
	}
}

func TestHandlerPanic(t *testing.T) {
	bus := NewSyncEventBus()
	bus.SetLogger(logger.NewTestLogger())
	defer bus.Close()

	called := false
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { panic("boom") })
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { called = true })

	bus.Publish(domain.NewVolumeChangedEvent(0.5))

	if !called {
		t.Error("Handler after a panicking handler should still be called")
	}
}

func TestClose(t *testing.T) {
	bus := NewSyncEventBus()

	calls := 0
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { calls++ })

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := bus.Close(); err != ErrClosed {
		t.Errorf("Expected ErrClosed on second close, got %v", err)
	}

	bus.Publish(domain.NewVolumeChangedEvent(0.5))
	if calls != 0 {
		t.Error("Closed bus should not deliver events")
	}
	if bus.SubscriberCount() != 0 {
		t.Error("Close should clear subscriptions")
	}
}

func TestNilEventAndHandler(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	bus.Publish(nil)

	defer func() {
		if recover() == nil {
			t.Error("Subscribe with nil handler should panic")
		}
	}()
	bus.Subscribe(domain.EventVolumeChanged, nil)
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var count atomic.Int64
	bus.Subscribe(domain.EventTimeProgress, func(domain.Event) { count.Add(1) })

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				bus.Publish(domain.NewTimeProgressEvent(domain.TimeProjection{}))
			}
		}()
		go func() {
			defer wg.Done()
			id := bus.Subscribe(domain.EventSeekCompleted, func(domain.Event) {})
			bus.Unsubscribe(id)
		}()
	}
	wg.Wait()

	if count.Load() != 1000 {
		t.Errorf("Expected 1000 deliveries, got %d", count.Load())
	}
}
