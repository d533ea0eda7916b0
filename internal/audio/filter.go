package audio

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// Gain scales both channels by a linear factor.
// The factor is read on every Stream call, so changes apply without reconnection.
type Gain struct {
	s     beep.Streamer
	value float64
}

func newGain(s beep.Streamer, value float64) *Gain {
	return &Gain{s: s, value: value}
}

func (g *Gain) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.s.Stream(samples)
	if g.value == 1 {
		return n, ok
	}
	for i := range n {
		samples[i][0] *= g.value
		samples[i][1] *= g.value
	}
	return n, ok
}

func (g *Gain) Err() error { return g.s.Err() }

// Value returns the current linear gain.
func (g *Gain) Value() float64 { return g.value }

// LowShelf is a second-order low-shelf IIR filter per the Audio EQ Cookbook
// (shelf slope S = 1). Coefficients are recomputed lazily when the gain changes.
type LowShelf struct {
	s    beep.Streamer
	freq float64
	sr   float64
	gain float64 // dB

	// Per-channel filter state
	x1, x2 [2]float64
	y1, y2 [2]float64

	// Cached coefficients
	b0, b1, b2, a1, a2 float64
	coeffGain          float64
	inited             bool
}

func newLowShelf(s beep.Streamer, freq, sampleRate, gainDB float64) *LowShelf {
	return &LowShelf{s: s, freq: freq, sr: sampleRate, gain: gainDB}
}

// Gain returns the shelf gain in dB.
func (f *LowShelf) Gain() float64 { return f.gain }

func (f *LowShelf) setGain(dB float64) { f.gain = dB }

func (f *LowShelf) calcCoeffs() {
	if f.inited && f.coeffGain == f.gain {
		return
	}
	f.coeffGain = f.gain
	f.inited = true

	a := math.Pow(10, f.gain/40)
	w0 := 2 * math.Pi * f.freq / f.sr
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / 2 * math.Sqrt2
	sqrtA2alpha := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cosW0 + sqrtA2alpha)
	b1 := 2 * a * ((a - 1) - (a+1)*cosW0)
	b2 := a * ((a + 1) - (a-1)*cosW0 - sqrtA2alpha)
	a0 := (a + 1) + (a-1)*cosW0 + sqrtA2alpha
	a1 := -2 * ((a - 1) + (a+1)*cosW0)
	a2 := (a + 1) + (a-1)*cosW0 - sqrtA2alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

func (f *LowShelf) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.s.Stream(samples)
	f.calcCoeffs()

	for i := range n {
		for ch := range 2 {
			x := samples[i][ch]
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
			f.x2[ch] = f.x1[ch]
			f.x1[ch] = x
			f.y2[ch] = f.y1[ch]
			f.y1[ch] = y
			samples[i][ch] = y
		}
	}
	return n, ok
}

func (f *LowShelf) Err() error { return f.s.Err() }
