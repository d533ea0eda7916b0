// Package mock provides in-memory implementations of the audio ports.
// These are used for testing the graph and services without a sound device.
package mock

import (
	"log/slog"
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

var _ ports.AudioOutput = (*Output)(nil)

// Output is a mock implementation of the AudioOutput interface.
// Nothing is pulled until Pump is called, so tests control time explicitly.
//
// Thread-safety: This implementation is thread-safe. Lock/Unlock share the
// mutex Pump holds while streaming, like the real speaker.
type Output struct {
	logger     *slog.Logger
	sampleRate int

	mu        sync.Mutex
	streamers []beep.Streamer
	buf       [][2]float64
	plays     int
	clears    int
	pumped    int
	closed    bool
}

// NewOutput creates a mock output running at sampleRate.
func NewOutput(sampleRate int) *Output {
	return &Output{
		sampleRate: sampleRate,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger for this output.
func (o *Output) SetLogger(logger *slog.Logger) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logger = logger
}

// SampleRate returns the configured rate.
func (o *Output) SampleRate() int {
	return o.sampleRate
}

// Play queues a streamer.
func (o *Output) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = append(o.streamers, s)
	o.plays++
}

// Clear removes every queued streamer.
func (o *Output) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = nil
	o.clears++
}

// Lock stops Pump until Unlock.
func (o *Output) Lock() {
	o.mu.Lock()
}

// Unlock releases Lock.
func (o *Output) Unlock() {
	o.mu.Unlock()
}

// Close marks the output closed and drops every streamer.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = nil
	o.closed = true
	return nil
}

// Pump pulls frames samples from every queued streamer, dropping the ones
// that are drained. It returns the mixed samples, which are only valid
// until the next call.
func (o *Output) Pump(frames int) [][2]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if cap(o.buf) < frames {
		o.buf = make([][2]float64, frames)
	}
	mix := o.buf[:frames]
	clear(mix)
	tmp := make([][2]float64, frames)

	kept := o.streamers[:0]
	for _, s := range o.streamers {
		clear(tmp)
		filled, ok := 0, true
		for filled < frames {
			var n int
			n, ok = s.Stream(tmp[filled:])
			filled += n
			if !ok || n == 0 {
				break
			}
		}
		for i := range filled {
			mix[i][0] += tmp[i][0]
			mix[i][1] += tmp[i][1]
		}
		if !ok {
			o.logger.Debug("streamer drained")
			continue
		}
		kept = append(kept, s)
	}
	o.streamers = kept
	o.pumped += frames
	return mix
}

// Queued returns the number of streamers currently queued.
func (o *Output) Queued() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streamers)
}

// PlayCount returns how many times Play was called.
func (o *Output) PlayCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.plays
}

// ClearCount returns how many times Clear was called.
func (o *Output) ClearCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.clears
}

// IsClosed reports whether Close was called.
func (o *Output) IsClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
