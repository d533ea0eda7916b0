package pcm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

var _ ports.AudioOutput = (*Output)(nil)

// Output plays streamers through the system speaker.
// There is a single speaker per process, so only one Output may be open.
type Output struct {
	logger     *slog.Logger
	sampleRate beep.SampleRate

	mu     sync.Mutex
	closed bool
}

// NewOutput initialises the speaker at sampleRate with the given buffer latency.
func NewOutput(sampleRate int, buffer time.Duration, logger *slog.Logger) (*Output, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return nil, err
	}

	logger = logger.With(slog.String("component", "Output"))
	logger.Info("speaker initialized", slog.Int("sample_rate", sampleRate), slog.Duration("buffer", buffer))

	return &Output{logger: logger, sampleRate: sr}, nil
}

// SampleRate returns the speaker rate.
func (o *Output) SampleRate() int {
	return int(o.sampleRate)
}

// Play queues s on the speaker.
func (o *Output) Play(s beep.Streamer) {
	speaker.Play(s)
}

// Clear removes every queued streamer.
func (o *Output) Clear() {
	speaker.Clear()
}

// Lock stops the speaker from pulling samples.
func (o *Output) Lock() {
	speaker.Lock()
}

// Unlock resumes the speaker.
func (o *Output) Unlock() {
	speaker.Unlock()
}

// Close releases the device. Subsequent calls are no-ops.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	speaker.Clear()
	speaker.Close()
	o.logger.Info("speaker closed")
	return nil
}
