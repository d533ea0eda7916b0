// Package domain defines events for the event-driven architecture.
// Events decouple the transport controller from the presenter and the render loop.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Load events
	EventAssetLoaded  EventType = "asset.loaded"
	EventDecodeFailed EventType = "asset.decode_failed"

	// Transport events
	EventPlaybackStarted EventType = "playback.started"
	EventPlaybackPaused  EventType = "playback.paused"
	EventPlaybackEnded   EventType = "playback.ended"
	EventSeekCompleted   EventType = "playback.seeked"
	EventTimeProgress    EventType = "playback.progress"

	// Parameter events
	EventVolumeChanged     EventType = "volume.changed"
	EventParametersChanged EventType = "parameters.changed"
	EventGraphRebuilt      EventType = "graph.rebuilt"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// AssetLoadedEvent is published when a decoded asset has been installed in a fresh graph.
type AssetLoadedEvent struct {
	baseEvent
	Asset *AudioAsset
	Title string
}

// Type returns the event type.
func (e AssetLoadedEvent) Type() EventType {
	return EventAssetLoaded
}

// NewAssetLoadedEvent creates a new AssetLoadedEvent.
func NewAssetLoadedEvent(asset *AudioAsset, title string) AssetLoadedEvent {
	return AssetLoadedEvent{
		baseEvent: newBaseEvent(),
		Asset:     asset,
		Title:     title,
	}
}

// DecodeFailedEvent is published when the latest load cannot be read, decoded
// or installed. Superseded loads never publish it.
type DecodeFailedEvent struct {
	baseEvent
	Name  string
	Error error
}

// Type returns the event type.
func (e DecodeFailedEvent) Type() EventType {
	return EventDecodeFailed
}

// NewDecodeFailedEvent creates a new DecodeFailedEvent.
func NewDecodeFailedEvent(name string, err error) DecodeFailedEvent {
	return DecodeFailedEvent{
		baseEvent: newBaseEvent(),
		Name:      name,
		Error:     err,
	}
}

// PlaybackStartedEvent is published once the playback clock confirms it is running.
type PlaybackStartedEvent struct {
	baseEvent
	Projection TimeProjection
}

// Type returns the event type.
func (e PlaybackStartedEvent) Type() EventType {
	return EventPlaybackStarted
}

// NewPlaybackStartedEvent creates a new PlaybackStartedEvent.
func NewPlaybackStartedEvent(projection TimeProjection) PlaybackStartedEvent {
	return PlaybackStartedEvent{
		baseEvent:  newBaseEvent(),
		Projection: projection,
	}
}

// PlaybackPausedEvent is published once the playback clock confirms it is suspended.
type PlaybackPausedEvent struct {
	baseEvent
	Projection TimeProjection
}

// Type returns the event type.
func (e PlaybackPausedEvent) Type() EventType {
	return EventPlaybackPaused
}

// NewPlaybackPausedEvent creates a new PlaybackPausedEvent.
func NewPlaybackPausedEvent(projection TimeProjection) PlaybackPausedEvent {
	return PlaybackPausedEvent{
		baseEvent:  newBaseEvent(),
		Projection: projection,
	}
}

// PlaybackEndedEvent is published when the asset plays to its end.
type PlaybackEndedEvent struct {
	baseEvent
	Projection TimeProjection
}

// Type returns the event type.
func (e PlaybackEndedEvent) Type() EventType {
	return EventPlaybackEnded
}

// NewPlaybackEndedEvent creates a new PlaybackEndedEvent.
func NewPlaybackEndedEvent(projection TimeProjection) PlaybackEndedEvent {
	return PlaybackEndedEvent{
		baseEvent:  newBaseEvent(),
		Projection: projection,
	}
}

// SeekCompletedEvent is published after the playback position moved.
type SeekCompletedEvent struct {
	baseEvent
	Projection TimeProjection
}

// Type returns the event type.
func (e SeekCompletedEvent) Type() EventType {
	return EventSeekCompleted
}

// NewSeekCompletedEvent creates a new SeekCompletedEvent.
func NewSeekCompletedEvent(projection TimeProjection) SeekCompletedEvent {
	return SeekCompletedEvent{
		baseEvent:  newBaseEvent(),
		Projection: projection,
	}
}

// TimeProgressEvent is published every frame while playing.
type TimeProgressEvent struct {
	baseEvent
	Projection TimeProjection
}

// Type returns the event type.
func (e TimeProgressEvent) Type() EventType {
	return EventTimeProgress
}

// NewTimeProgressEvent creates a new TimeProgressEvent.
func NewTimeProgressEvent(projection TimeProjection) TimeProgressEvent {
	return TimeProgressEvent{
		baseEvent:  newBaseEvent(),
		Projection: projection,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// ParametersChangedEvent is published whenever VisualParameters change.
type ParametersChangedEvent struct {
	baseEvent
	Parameters VisualParameters
}

// Type returns the event type.
func (e ParametersChangedEvent) Type() EventType {
	return EventParametersChanged
}

// NewParametersChangedEvent creates a new ParametersChangedEvent.
func NewParametersChangedEvent(params VisualParameters) ParametersChangedEvent {
	return ParametersChangedEvent{
		baseEvent:  newBaseEvent(),
		Parameters: params,
	}
}

// GraphRebuiltEvent is published after the playback graph topology changed.
type GraphRebuiltEvent struct {
	baseEvent
	Stages []string
}

// Type returns the event type.
func (e GraphRebuiltEvent) Type() EventType {
	return EventGraphRebuilt
}

// NewGraphRebuiltEvent creates a new GraphRebuiltEvent.
func NewGraphRebuiltEvent(stages []string) GraphRebuiltEvent {
	return GraphRebuiltEvent{
		baseEvent: newBaseEvent(),
		Stages:    stages,
	}
}
