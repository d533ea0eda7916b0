package mock

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

var _ ports.Decoder = (*Decoder)(nil)

// Decoder is a mock implementation of the Decoder interface.
// By default every payload decodes to a sine asset of the configured length.
//
// Thread-safety: This implementation is thread-safe.
type Decoder struct {
	mu         sync.Mutex
	sampleRate int
	duration   time.Duration
	failDecode bool
	gates      map[string]chan struct{}
	calls      int
}

// NewDecoder creates a mock decoder producing sampleRate assets of duration.
func NewDecoder(sampleRate int, duration time.Duration) *Decoder {
	return &Decoder{
		sampleRate: sampleRate,
		duration:   duration,
		gates:      make(map[string]chan struct{}),
	}
}

// SetFailDecode configures the mock to fail decoding (for testing).
func (d *Decoder) SetFailDecode(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failDecode = fail
}

// SetDuration changes the length of the produced assets.
func (d *Decoder) SetDuration(duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.duration = duration
}

// Hold makes decodes of name block until the returned function is called.
func (d *Decoder) Hold(name string) (release func()) {
	gate := make(chan struct{})
	d.mu.Lock()
	d.gates[name] = gate
	d.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Calls returns how many times Decode was called.
func (d *Decoder) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Decode simulates decoding raw.
func (d *Decoder) Decode(name string, raw []byte) (*domain.AudioAsset, error) {
	d.mu.Lock()
	d.calls++
	gate := d.gates[name]
	fail := d.failDecode
	rate := d.sampleRate
	duration := d.duration
	d.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if fail || len(raw) == 0 {
		return nil, domain.NewDecodeError(name, len(raw), "unknown", fmt.Errorf("mock decode failure"))
	}

	return SineAsset(name, rate, duration, 440), nil
}

// SineAsset builds a stereo sine wave asset at half amplitude.
func SineAsset(name string, sampleRate int, duration time.Duration, freq float64) *domain.AudioAsset {
	frames := int(duration.Seconds() * float64(sampleRate))
	left := make([]float32, frames)
	for i := range left {
		left[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	right := make([]float32, frames)
	copy(right, left)

	return &domain.AudioAsset{
		Name:       name,
		SampleRate: sampleRate,
		Channels:   [][]float32{left, right},
	}
}
