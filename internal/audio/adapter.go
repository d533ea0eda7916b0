package audio

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

// Config tunes the graphs built by a SourceAdapter.
type Config struct {
	FFTSize         int     // main analyser window, power of two
	BassFFTSize     int     // bass analyser window, power of two
	Smoothing       float64 // time smoothing of the spectra, 0..1
	MinDecibels     float64
	MaxDecibels     float64
	ShelfFrequency  float64 // low-shelf corner in Hz
	ResampleQuality int
}

// DefaultConfig returns the analyser and filter settings used by the application.
func DefaultConfig() Config {
	return Config{
		FFTSize:         2048,
		BassFFTSize:     256,
		Smoothing:       DefaultSmoothing,
		MinDecibels:     DefaultMinDecibels,
		MaxDecibels:     DefaultMaxDecibels,
		ShelfFrequency:  200,
		ResampleQuality: 4,
	}
}

var _ ports.SignalSource = (*SourceAdapter)(nil)

// outlet is the streamer handed to the output. It forwards to the current
// graph, which is swapped under the output lock.
type outlet struct {
	graph *Graph
	onEnd func()
}

func (o *outlet) Stream(samples [][2]float64) (int, bool) {
	n, ok := o.graph.Stream(samples)
	if !ok {
		o.onEnd()
	}
	return n, ok
}

func (o *outlet) Err() error { return o.graph.Err() }

// SourceAdapter owns the decoded asset and the live playback graph.
//
// Lock order is a.mu, then the output lock. The output goroutine only ever
// touches the outlet, the graph stages and the ended flag.
type SourceAdapter struct {
	output ports.AudioOutput
	config Config
	logger *slog.Logger

	generation atomic.Uint64
	graph      atomic.Pointer[Graph]
	ended      atomic.Bool

	mu          sync.Mutex
	asset       *domain.AudioAsset
	source      *assetStreamer
	outlet      *outlet
	ctrl        *beep.Ctrl
	started     bool
	gain        float64
	bassEnabled bool
	bassGain    float64
}

// NewSourceAdapter creates an adapter playing into output.
func NewSourceAdapter(output ports.AudioOutput, config Config, logger *slog.Logger) *SourceAdapter {
	return &SourceAdapter{
		output:   output,
		config:   config,
		logger:   logger.With(slog.String("component", "SourceAdapter")),
		gain:     domain.DefaultVolume,
		bassGain: domain.DefaultBassGain,
	}
}

// BeginLoad invalidates every in-flight load and returns a token for a new one.
func (a *SourceAdapter) BeginLoad() uint64 {
	return a.generation.Add(1)
}

// Current reports whether token belongs to the latest load.
func (a *SourceAdapter) Current(token uint64) bool {
	return a.generation.Load() == token
}

// Install discards the current asset and graph and builds a graph for asset.
// The new graph is not started.
func (a *SourceAdapter) Install(token uint64, asset *domain.AudioAsset) error {
	if asset == nil || asset.Frames() == 0 {
		return domain.ErrEmptyAsset
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if token != a.generation.Load() {
		a.logger.Debug("discarding stale load", slog.String("name", asset.Name), slog.Uint64("token", token))
		return domain.ErrLoadSuperseded
	}

	a.teardownLocked()

	a.asset = asset
	a.source = newAssetStreamer(asset)
	g := a.buildLocked()
	a.outlet = &outlet{graph: g, onEnd: a.markEnded}
	a.ctrl = &beep.Ctrl{Streamer: a.outlet}
	a.started = false
	a.ended.Store(false)
	a.graph.Store(g)

	a.logger.Info("asset installed",
		slog.String("name", asset.Name),
		slog.Int("sample_rate", asset.SampleRate),
		slog.Int("channels", asset.NumChannels()),
		slog.Duration("duration", asset.Duration()),
		slog.Any("topology", g.Topology()))

	return nil
}

// markEnded runs on the output goroutine with the output lock held.
func (a *SourceAdapter) markEnded() {
	a.ended.Store(true)
}

// teardownLocked clears the output and disconnects the live graph.
func (a *SourceAdapter) teardownLocked() {
	if a.ctrl != nil {
		a.output.Clear()
	}
	if old := a.graph.Swap(nil); old != nil {
		old.Disconnect()
	}
	a.asset = nil
	a.source = nil
	a.outlet = nil
	a.ctrl = nil
	a.started = false
	a.ended.Store(false)
}

func (a *SourceAdapter) buildLocked() *Graph {
	var src beep.Streamer = a.source
	outRate := a.output.SampleRate()
	if a.asset.SampleRate != outRate {
		src = beep.Resample(a.config.ResampleQuality, beep.SampleRate(a.asset.SampleRate), beep.SampleRate(outRate), src)
	}

	return newGraph(src, a.config, graphOptions{
		sampleRate: float64(outRate),
		gain:       a.gain,
		bassBoost:  a.bassEnabled,
		bassGain:   a.bassGain,
	})
}

// swapLocked replaces the live graph. seek, when non-nil, runs under the
// output lock before the new graph becomes audible.
func (a *SourceAdapter) swapLocked(g *Graph, seek func()) {
	a.output.Lock()
	if seek != nil {
		seek()
	}
	a.outlet.graph = g
	a.output.Unlock()

	if old := a.graph.Swap(g); old != nil {
		old.Disconnect()
	}
}

// Start starts the playback clock of the installed graph. It may be called
// once per installed asset.
func (a *SourceAdapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startLocked()
}

func (a *SourceAdapter) startLocked() error {
	if a.asset == nil {
		return domain.ErrNoAssetLoaded
	}
	if a.started {
		return domain.ErrAlreadyStarted
	}

	a.started = true
	a.output.Lock()
	a.ctrl.Paused = false
	a.output.Unlock()
	a.output.Play(a.ctrl)

	a.logger.Debug("playback started", slog.String("name", a.asset.Name))
	return nil
}

// Suspend pauses the playback clock. The output keeps pulling silence, so
// the analysers hold their last data.
func (a *SourceAdapter) Suspend() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.asset == nil {
		return domain.ErrNoAssetLoaded
	}

	a.output.Lock()
	a.ctrl.Paused = true
	a.output.Unlock()
	return nil
}

// Resume resumes the playback clock. After the asset played to its end the
// source is rewound and the graph queued again.
func (a *SourceAdapter) Resume() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.asset == nil {
		return domain.ErrNoAssetLoaded
	}
	if !a.started {
		return a.startLocked()
	}
	if a.ended.Load() {
		a.requeueLocked(0, false)
		return nil
	}

	a.output.Lock()
	a.ctrl.Paused = false
	a.output.Unlock()
	return nil
}

// requeueLocked puts a finished graph back on the output at frame.
// A fresh graph is built so no stage carries state from the end of the asset.
func (a *SourceAdapter) requeueLocked(frame int, paused bool) {
	g := a.buildLocked()
	a.swapLocked(g, func() {
		_ = a.source.Seek(frame)
		a.ctrl.Paused = paused
	})
	a.ended.Store(false)
	a.output.Play(a.ctrl)
}

// Seek moves the playback position. Positions outside the asset are clamped.
func (a *SourceAdapter) Seek(position time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.asset == nil {
		return domain.ErrNoAssetLoaded
	}

	frame := int(position.Seconds() * float64(a.asset.SampleRate))
	frame = max(0, min(frame, a.asset.Frames()))

	if a.ended.Load() {
		a.requeueLocked(frame, a.ctrl.Paused)
		return nil
	}

	a.output.Lock()
	err := a.source.Seek(frame)
	a.output.Unlock()
	return err
}

// Position returns the playback position of the source.
func (a *SourceAdapter) Position() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.asset == nil {
		return 0
	}

	a.output.Lock()
	frame := a.source.Position()
	a.output.Unlock()

	return time.Duration(frame) * time.Second / time.Duration(a.asset.SampleRate)
}

// Duration returns the length of the installed asset.
func (a *SourceAdapter) Duration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.asset == nil {
		return 0
	}
	return a.asset.Duration()
}

// Ended reports whether the source played to its end.
func (a *SourceAdapter) Ended() bool {
	return a.ended.Load()
}

// SetGain sets the linear gain applied before the analysers.
func (a *SourceAdapter) SetGain(value float64) error {
	if value < 0 {
		return domain.NewValidationError("gain", value, domain.ErrInvalidVolume)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.gain = value
	if g := a.graph.Load(); g != nil {
		a.output.Lock()
		g.gain.value = value
		a.output.Unlock()
	}
	return nil
}

// SetBassGain updates the low-shelf gain in place.
func (a *SourceAdapter) SetBassGain(gainDB float64) error {
	if gainDB < domain.MinBassGain || gainDB > domain.MaxBassGain {
		return domain.NewValidationError("bassGain", gainDB, domain.ErrInvalidBassGain)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.bassGain = gainDB
	if g := a.graph.Load(); g != nil && g.bassFilter != nil {
		a.output.Lock()
		g.bassFilter.setGain(gainDB)
		a.output.Unlock()
	}
	return nil
}

// SetBassBoost inserts or removes the low-shelf stage and the bass analyser.
// Without an asset only the setting is recorded; it applies to the next load.
func (a *SourceAdapter) SetBassBoost(enabled bool, gainDB float64) error {
	if gainDB < domain.MinBassGain || gainDB > domain.MaxBassGain {
		return domain.NewValidationError("bassGain", gainDB, domain.ErrInvalidBassGain)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.bassGain = gainDB
	if a.asset == nil {
		a.bassEnabled = enabled
		return nil
	}

	if enabled == a.bassEnabled {
		if g := a.graph.Load(); g != nil && g.bassFilter != nil {
			a.output.Lock()
			g.bassFilter.setGain(gainDB)
			a.output.Unlock()
		}
		return nil
	}

	a.bassEnabled = enabled
	g := a.buildLocked()
	a.swapLocked(g, nil)

	a.logger.Debug("graph rebuilt", slog.Bool("bass_boost", enabled), slog.Any("topology", g.Topology()))
	return nil
}

// Topology returns the stage names of the live graph, or nil without one.
func (a *SourceAdapter) Topology() []string {
	if g := a.graph.Load(); g != nil {
		return g.Topology()
	}
	return nil
}

// Graph returns the live graph, or nil without one.
// The render loop reads the analysers of the returned graph.
func (a *SourceAdapter) Graph() *Graph {
	return a.graph.Load()
}

// Close tears down the graph and releases the output.
func (a *SourceAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.teardownLocked()
	return a.output.Close()
}
