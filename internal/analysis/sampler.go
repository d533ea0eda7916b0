// Package analysis turns the analyser taps of a playback graph into
// per-frame byte snapshots for the visual mapper.
package analysis

import (
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/audio"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
)

// Sampler reads analyser taps once per frame.
// The buffers of the returned frames are owned by the Sampler and are
// overwritten by the next call, so a Sampler must not be shared between
// goroutines.
type Sampler struct {
	freq []byte
	bass []byte
	wave []byte
}

// NewSampler creates a Sampler.
func NewSampler() *Sampler {
	return &Sampler{}
}

// Sample snapshots the taps of g. A nil graph yields an empty frame.
// Bass magnitudes are only read when the overlay is enabled and the graph
// has a bass analyser; time-domain data is only read in waves mode.
func (s *Sampler) Sample(g *audio.Graph, params domain.VisualParameters) domain.AnalysisFrame {
	var frame domain.AnalysisFrame
	if g == nil {
		return frame
	}

	main := g.Analyser()
	s.freq = resize(s.freq, main.BinCount())
	main.ByteFrequencyData(s.freq)
	frame.Magnitudes = s.freq

	// The waves mapper draws from Magnitudes. The raw waveform is still
	// captured for frame consumers that want it, and only in waves mode.
	if params.Mode == domain.ModeWaves {
		s.wave = resize(s.wave, main.BinCount())
		main.ByteTimeDomainData(s.wave)
		frame.TimeDomain = s.wave
	}

	if bass := g.BassAnalyser(); bass != nil && params.BassOverlayEnabled {
		s.bass = resize(s.bass, bass.BinCount())
		bass.ByteFrequencyData(s.bass)
		frame.BassMagnitudes = s.bass
	}

	return frame
}

func resize(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}
