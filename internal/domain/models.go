// Package domain contains core models of the audio visualiser with no external dependencies.
// This package defines the fundamental entities shared by the playback graph,
// the render loop and the transport controller.
package domain

import (
	"time"
)

// AudioAsset is a fully decoded audio buffer.
// It is produced once by a Decoder and never mutated afterward; a new load
// replaces the whole asset.
type AudioAsset struct {
	// Name is the display name of the source (usually the file name)
	Name string

	// SampleRate is the sample rate of the decoded PCM in Hz
	SampleRate int

	// Channels holds one sample sequence per channel, samples in [-1, 1]
	Channels [][]float32
}

// NumChannels returns the number of decoded channels.
func (a *AudioAsset) NumChannels() int {
	return len(a.Channels)
}

// Frames returns the number of sample frames in the asset.
func (a *AudioAsset) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Duration returns the playback length of the asset.
func (a *AudioAsset) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(a.Frames()) * time.Second / time.Duration(a.SampleRate)
}

// DurationSeconds returns the playback length in seconds.
func (a *AudioAsset) DurationSeconds() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.Frames()) / float64(a.SampleRate)
}

// Mode selects the geometry the visual mapper produces.
type Mode string

const (
	// ModeBars draws one vertical bar per frequency bin
	ModeBars Mode = "bars"

	// ModeCircles places one dot per bin around a circle
	ModeCircles Mode = "circles"

	// ModeWaves strokes a single polyline across the surface
	ModeWaves Mode = "waves"
)

// Modes returns all visual modes in display order.
func Modes() []Mode {
	return []Mode{ModeBars, ModeCircles, ModeWaves}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeBars, ModeCircles, ModeWaves:
		return true
	default:
		return false
	}
}

// Parameter bounds and defaults.
const (
	DefaultSensitivity = 5.0
	MinSensitivity     = 1.0
	MaxSensitivity     = 10.0

	DefaultBassGain = 10.0
	MinBassGain     = -40.0
	MaxBassGain     = 40.0

	DefaultVolume = 1.0
)

// VisualParameters are the user-tunable inputs of the visual mapper.
// They are written by transport commands and read by the render loop each frame.
type VisualParameters struct {
	// Sensitivity scales every magnitude before it becomes geometry (> 0)
	Sensitivity float64

	// BassGain is the low-shelf boost in dB applied when bass boost is on
	BassGain float64

	// Mode is the current visual style
	Mode Mode

	// BassOverlayEnabled draws the bass sub-band over the main visualization
	BassOverlayEnabled bool
}

// DefaultVisualParameters returns the parameters used before any user input.
func DefaultVisualParameters() VisualParameters {
	return VisualParameters{
		Sensitivity: DefaultSensitivity,
		BassGain:    DefaultBassGain,
		Mode:        ModeBars,
	}
}

// AnalysisFrame is one snapshot of the analyser taps.
// The slices are owned by the sampler and overwritten on the next frame.
type AnalysisFrame struct {
	// Magnitudes holds one byte per frequency bin
	Magnitudes []byte

	// BassMagnitudes holds the low-resolution bass sub-band; empty when the overlay is off
	BassMagnitudes []byte

	// TimeDomain holds byte time-domain samples centred at 128; only filled in waves mode
	TimeDomain []byte
}

// TransportState is the playback state of the transport controller.
type TransportState int

const (
	// StateIdle means no asset has been loaded yet
	StateIdle TransportState = iota

	// StatePaused means an asset is loaded and its clock is suspended
	StatePaused

	// StatePlaying means an asset is loaded and playing
	StatePlaying

	// StateSeeking is transient while the playback position moves
	StateSeeking
)

// String returns a human-readable representation of the transport state.
func (s TransportState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePaused:
		return "loaded-paused"
	case StatePlaying:
		return "loaded-playing"
	case StateSeeking:
		return "seeking"
	default:
		return "unknown"
	}
}

// HasAsset reports whether the state implies a loaded asset.
func (s TransportState) HasAsset() bool {
	return s != StateIdle
}

// TimeProjection is the derived time display of the transport.
type TimeProjection struct {
	Current  time.Duration
	Duration time.Duration
}

// CurrentText returns the current time formatted as mm:ss.
func (p TimeProjection) CurrentText() string {
	return FormatTime(p.Current.Seconds())
}

// DurationText returns the duration formatted as mm:ss.
func (p TimeProjection) DurationText() string {
	return FormatTime(p.Duration.Seconds())
}

// Percent returns the position as a percentage of the duration.
func (p TimeProjection) Percent() float64 {
	if p.Duration <= 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Duration) * 100
}

// Preferences contain persisted user settings.
type Preferences struct {
	Volume      float64
	Sensitivity float64
	BassGain    float64
	Mode        Mode
	Theme       string
}
