package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Analyser defaults, matching the behaviour browsers use for AnalyserNode.
const (
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
)

// Analyser is a pass-through stage that keeps the last fftSize mono samples
// in a ring buffer. The render loop reads byte spectra and byte waveforms
// from it without touching the output lock. Only one goroutine may read.
type Analyser struct {
	s       beep.Streamer
	fftSize int

	smoothing    float64
	minDB, maxDB float64
	blackman     []float64
	scratch      []float64
	smoothed     []float64
	frame        []float64

	mu        sync.Mutex
	ring      []float64
	pos       int
	connected bool
}

func newAnalyser(s beep.Streamer, fftSize int, smoothing, minDB, maxDB float64) *Analyser {
	return &Analyser{
		s:         s,
		fftSize:   fftSize,
		smoothing: smoothing,
		minDB:     minDB,
		maxDB:     maxDB,
		blackman:  window.Blackman(fftSize),
		scratch:   make([]float64, fftSize),
		smoothed:  make([]float64, fftSize/2),
		frame:     make([]float64, fftSize),
		ring:      make([]float64, fftSize),
		connected: true,
	}
}

func (a *Analyser) Stream(samples [][2]float64) (int, bool) {
	n, ok := a.s.Stream(samples)
	if n == 0 {
		return n, ok
	}

	a.mu.Lock()
	if a.connected {
		for i := range n {
			a.ring[a.pos] = (samples[i][0] + samples[i][1]) / 2
			a.pos = (a.pos + 1) % len(a.ring)
		}
	}
	a.mu.Unlock()
	return n, ok
}

func (a *Analyser) Err() error { return a.s.Err() }

// FFTSize returns the analysis window length.
func (a *Analyser) FFTSize() int { return a.fftSize }

// BinCount returns the number of frequency bins, half the FFT size.
func (a *Analyser) BinCount() int { return a.fftSize / 2 }

// Connected reports whether the analyser is still part of a live graph.
func (a *Analyser) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

func (a *Analyser) disconnect() {
	a.mu.Lock()
	a.connected = false
	clear(a.ring)
	a.pos = 0
	a.mu.Unlock()
}

// snapshot copies the ring buffer, oldest sample first, into dst.
// Callers must hold a.mu.
func (a *Analyser) snapshot(dst []float64) {
	k := copy(dst, a.ring[a.pos:])
	copy(dst[k:], a.ring[:a.pos])
}

// ByteFrequencyData fills dst with smoothed magnitudes in decibels scaled to
// 0..255 over [minDB, maxDB]. At most BinCount bytes are written.
// It returns the number of bytes written.
func (a *Analyser) ByteFrequencyData(dst []byte) int {
	a.mu.Lock()
	a.snapshot(a.frame)
	a.mu.Unlock()

	for i, v := range a.frame {
		a.scratch[i] = v * a.blackman[i]
	}
	spectrum := fft.FFTReal(a.scratch)

	n := min(len(dst), a.BinCount())
	scale := 1 / float64(a.fftSize)
	rangeDB := a.maxDB - a.minDB
	for k := range a.BinCount() {
		mag := math.Hypot(real(spectrum[k]), imag(spectrum[k])) * scale
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag

		if k >= n {
			continue
		}
		if a.smoothed[k] <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		dst[k] = clampByte(255 * (db - a.minDB) / rangeDB)
	}
	return n
}

// ByteTimeDomainData fills dst with the most recent samples mapped to
// 128*(1+sample), 128 being silence. It returns the number of bytes written.
func (a *Analyser) ByteTimeDomainData(dst []byte) int {
	n := min(len(dst), a.fftSize)

	a.mu.Lock()
	a.snapshot(a.frame)
	a.mu.Unlock()

	// newest n samples
	src := a.frame[a.fftSize-n:]
	for i, v := range src {
		dst[i] = clampByte(128 * (1 + v))
	}
	return n
}

func clampByte(v float64) byte {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v)
	}
}
