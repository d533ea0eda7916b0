package audio

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// Stage names a node of the playback graph.
type Stage string

const (
	StageSource       Stage = "source"
	StageBassFilter   Stage = "bassFilter"
	StageGain         Stage = "gain"
	StageAnalyser     Stage = "analyser"
	StageBassAnalyser Stage = "bassAnalyser"
	StageDestination  Stage = "destination"
)

// Graph is one fully connected playback chain.
// A Graph is never rewired: a topology change builds a new Graph and the
// adapter swaps it in whole, so readers never see a half-connected chain.
type Graph struct {
	head beep.Streamer

	bassFilter   *LowShelf
	gain         *Gain
	analyser     *Analyser
	bassAnalyser *Analyser

	stages       []Stage
	disconnected atomic.Bool
}

type graphOptions struct {
	sampleRate float64
	gain       float64
	bassBoost  bool
	bassGain   float64
}

func newGraph(src beep.Streamer, cfg Config, opts graphOptions) *Graph {
	g := &Graph{stages: []Stage{StageSource}}

	s := src
	if opts.bassBoost {
		g.bassFilter = newLowShelf(s, cfg.ShelfFrequency, opts.sampleRate, opts.bassGain)
		s = g.bassFilter
		g.stages = append(g.stages, StageBassFilter)
	}

	g.gain = newGain(s, opts.gain)
	s = g.gain
	g.stages = append(g.stages, StageGain)

	g.analyser = newAnalyser(s, cfg.FFTSize, cfg.Smoothing, cfg.MinDecibels, cfg.MaxDecibels)
	s = g.analyser
	g.stages = append(g.stages, StageAnalyser)

	if opts.bassBoost {
		g.bassAnalyser = newAnalyser(s, cfg.BassFFTSize, cfg.Smoothing, cfg.MinDecibels, cfg.MaxDecibels)
		s = g.bassAnalyser
		g.stages = append(g.stages, StageBassAnalyser)
	}

	g.head = s
	g.stages = append(g.stages, StageDestination)
	return g
}

func (g *Graph) Stream(samples [][2]float64) (int, bool) {
	return g.head.Stream(samples)
}

func (g *Graph) Err() error { return g.head.Err() }

// Topology returns the stage names in signal order.
func (g *Graph) Topology() []string {
	out := make([]string, len(g.stages))
	for i, s := range g.stages {
		out[i] = string(s)
	}
	return out
}

// Analyser returns the main analyser tap.
func (g *Graph) Analyser() *Analyser { return g.analyser }

// BassAnalyser returns the bass analyser tap, or nil when bass boost is off.
func (g *Graph) BassAnalyser() *Analyser { return g.bassAnalyser }

// BassFilter returns the low-shelf stage, or nil when bass boost is off.
func (g *Graph) BassFilter() *LowShelf { return g.bassFilter }

// Gain returns the gain stage.
func (g *Graph) Gain() *Gain { return g.gain }

// Connected reports whether the graph is still live.
func (g *Graph) Connected() bool { return !g.disconnected.Load() }

// Disconnect releases every stage. It is safe to call more than once.
func (g *Graph) Disconnect() {
	if g.disconnected.Swap(true) {
		return
	}
	g.analyser.disconnect()
	if g.bassAnalyser != nil {
		g.bassAnalyser.disconnect()
	}
}
