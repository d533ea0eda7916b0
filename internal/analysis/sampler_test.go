package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/audio/mock"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/audio"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/logger"
)

func newPlayingAdapter(t *testing.T, bass bool) (*audio.SourceAdapter, *mock.Output) {
	t.Helper()
	out := mock.NewOutput(8000)
	a := audio.NewSourceAdapter(out, audio.DefaultConfig(), logger.NewTestLogger())
	require.NoError(t, a.SetBassBoost(bass, 10))
	require.NoError(t, a.Install(a.BeginLoad(), mock.SineAsset("tone.wav", 8000, 2*time.Second, 1000)))
	require.NoError(t, a.Start())
	return a, out
}

func TestSampler_NilGraph(t *testing.T) {
	frame := NewSampler().Sample(nil, domain.DefaultVisualParameters())
	assert.Empty(t, frame.Magnitudes)
	assert.Empty(t, frame.BassMagnitudes)
	assert.Empty(t, frame.TimeDomain)
}

func TestSampler_BinCountIsHalfFFTSize(t *testing.T) {
	a, out := newPlayingAdapter(t, false)
	out.Pump(4096)

	s := NewSampler()
	frame := s.Sample(a.Graph(), domain.DefaultVisualParameters())
	assert.Len(t, frame.Magnitudes, 1024)
	assert.Empty(t, frame.TimeDomain, "time domain is only read in waves mode")
	assert.Empty(t, frame.BassMagnitudes)

	nonZero := 0
	for _, m := range frame.Magnitudes {
		if m > 0 {
			nonZero++
		}
	}
	assert.Positive(t, nonZero)
}

func TestSampler_WavesMode(t *testing.T) {
	a, out := newPlayingAdapter(t, false)
	out.Pump(4096)

	params := domain.DefaultVisualParameters()
	params.Mode = domain.ModeWaves
	frame := NewSampler().Sample(a.Graph(), params)
	require.Len(t, frame.TimeDomain, 1024)

	lo, hi := byte(255), byte(0)
	for _, b := range frame.TimeDomain {
		lo = min(lo, b)
		hi = max(hi, b)
	}
	assert.Less(t, lo, byte(128))
	assert.Greater(t, hi, byte(128))
}

func TestSampler_BassOverlay(t *testing.T) {
	a, out := newPlayingAdapter(t, true)
	out.Pump(4096)

	params := domain.DefaultVisualParameters()
	frame := NewSampler().Sample(a.Graph(), params)
	assert.Empty(t, frame.BassMagnitudes, "overlay disabled")

	params.BassOverlayEnabled = true
	frame = NewSampler().Sample(a.Graph(), params)
	assert.Len(t, frame.BassMagnitudes, 128)
}

func TestSampler_ReusesBuffers(t *testing.T) {
	a, out := newPlayingAdapter(t, false)
	out.Pump(2048)

	s := NewSampler()
	first := s.Sample(a.Graph(), domain.DefaultVisualParameters())
	second := s.Sample(a.Graph(), domain.DefaultVisualParameters())
	assert.Same(t, &first.Magnitudes[0], &second.Magnitudes[0])
}

func TestSampler_PausedFramesAreFrozen(t *testing.T) {
	a, out := newPlayingAdapter(t, false)
	out.Pump(4096)
	require.NoError(t, a.Suspend())

	params := domain.DefaultVisualParameters()
	params.Mode = domain.ModeWaves
	s := NewSampler()
	before := append([]byte(nil), s.Sample(a.Graph(), params).TimeDomain...)
	out.Pump(4096)
	after := s.Sample(a.Graph(), params).TimeDomain

	assert.Equal(t, before, after)
}
