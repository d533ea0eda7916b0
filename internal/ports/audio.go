// Package ports define interfaces for dependency inversion.
// These interfaces keep the visualiser core independent of the audio backend and UI toolkit.
package ports

import (
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
)

// Decoder turns a raw payload into a fully decoded AudioAsset.
//
// Implementations must not retain raw after returning. Failures are reported
// as *domain.DecodeError.
type Decoder interface {
	// Decode decodes the whole payload.
	// name: Display name of the payload, used for error context and format hints
	Decode(name string, raw []byte) (*domain.AudioAsset, error)
}

// AudioOutput is the terminal sink of the playback graph.
// This abstracts the speaker so graphs can be exercised in tests without a device.
//
// Implementations must be thread-safe; Lock/Unlock bracket any mutation of a
// streamer that is currently being pulled by the output.
type AudioOutput interface {
	// SampleRate returns the rate the output consumes samples at.
	SampleRate() int

	// Play queues a streamer for playback.
	Play(s beep.Streamer)

	// Clear removes every queued streamer.
	Clear()

	// Lock stops the output from pulling samples until Unlock.
	Lock()

	// Unlock resumes pulling samples.
	Unlock()

	// Close releases the device.
	Close() error
}

// SignalSource owns the decoded asset and its playback graph.
// The transport controller drives it; the render loop only reads from it.
type SignalSource interface {
	// BeginLoad invalidates every in-flight load and returns a token for a new one.
	BeginLoad() uint64

	// Current reports whether token is still the latest load token.
	Current(token uint64) bool

	// Install replaces the current asset and graph with a graph built for asset.
	// Returns domain.ErrLoadSuperseded when token is no longer the latest.
	Install(token uint64, asset *domain.AudioAsset) error

	// Start starts the playback clock of the freshly installed graph.
	Start() error

	// Suspend pauses the playback clock.
	Suspend() error

	// Resume resumes the playback clock.
	Resume() error

	// Seek moves the playback position.
	Seek(position time.Duration) error

	// Position returns the current playback position.
	Position() time.Duration

	// Duration returns the length of the installed asset.
	Duration() time.Duration

	// Ended reports whether the asset played to its end.
	Ended() bool

	// SetGain sets the linear gain of the gain stage.
	SetGain(value float64) error

	// SetBassBoost inserts or removes the low-shelf stage.
	SetBassBoost(enabled bool, gainDB float64) error

	// SetBassGain updates the low-shelf gain without reconnecting.
	SetBassGain(gainDB float64) error

	// Topology returns the stage names of the live graph in signal order.
	Topology() []string

	// Close tears down the graph and the output.
	Close() error
}

// MetadataReader extracts a display title from a raw payload.
type MetadataReader interface {
	// Title returns the embedded title, or "" when none is present.
	Title(raw []byte) string
}
