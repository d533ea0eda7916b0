package render

import (
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/analysis"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/audio"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/visual"
)

// Surface fraction of the viewport, applied on the first frame of a session.
const (
	WidthFraction  = 0.8
	HeightFraction = 0.6
)

// GraphSource provides the live playback graph, or nil without one.
type GraphSource interface {
	Graph() *audio.Graph
}

// ParameterSource provides a snapshot of the visual parameters.
type ParameterSource interface {
	Parameters() domain.VisualParameters
}

// Viewport reports the size of the area the surface lives in.
type Viewport interface {
	ViewportSize() (w, h float32)
}

// FrameSink receives every finished frame. The loop alternates between two
// frame buffers, so an image stays valid until the next frame is presented
// and is overwritten by the one after.
type FrameSink interface {
	Present(frame *image.RGBA)
}

// FrameHook runs after every presented frame.
type FrameHook func()

// Config configures a Loop.
type Config struct {
	FrameRate int
	Gradient  Gradient
}

// DefaultConfig returns a 60 fps loop with the default background.
func DefaultConfig() Config {
	return Config{FrameRate: 60, Gradient: DefaultGradient}
}

// Loop renders frames at a fixed rate once started. It is not stopped
// when playback pauses; paused graphs simply yield frozen analyser data.
type Loop struct {
	graphs   GraphSource
	params   ParameterSource
	viewport Viewport
	sink     FrameSink
	surface  *RasterSurface
	sampler  *analysis.Sampler
	mapper   *visual.Mapper
	interval time.Duration
	logger   *slog.Logger

	tickMu  sync.Mutex // serializes frames
	hooks   []FrameHook
	buffers [2]*image.RGBA
	next    int

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	newSession atomic.Bool
	frames     atomic.Uint64
}

// NewLoop creates an idle loop.
func NewLoop(config Config, graphs GraphSource, params ParameterSource, viewport Viewport, sink FrameSink, logger *slog.Logger) *Loop {
	rate := config.FrameRate
	if rate <= 0 {
		rate = 60
	}
	return &Loop{
		graphs:   graphs,
		params:   params,
		viewport: viewport,
		sink:     sink,
		surface:  NewRasterSurface(0, 0, config.Gradient),
		sampler:  analysis.NewSampler(),
		mapper:   visual.NewMapper(),
		interval: time.Second / time.Duration(rate),
		logger:   logger.With(slog.String("component", "RenderLoop")),
	}
}

// AddFrameHook registers fn to run after every frame.
func (l *Loop) AddFrameHook(fn FrameHook) {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	l.hooks = append(l.hooks, fn)
}

// NewSession makes the next frame resize the surface to the viewport.
func (l *Loop) NewSession() {
	l.newSession.Store(true)
}

// Surface returns the surface frames are drawn on.
func (l *Loop) Surface() *RasterSurface {
	return l.surface
}

// Frames returns the number of frames rendered so far.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// IsRunning reports whether the loop is scheduled.
func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Start schedules frames until Stop. Starting a running loop is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}
	l.running = true
	l.stop = make(chan struct{})
	l.done = make(chan struct{})

	go l.run(l.stop, l.done)
	l.logger.Debug("render loop started", slog.Duration("interval", l.interval))
}

// Stop halts the loop and waits for the in-flight frame.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	stop, done := l.stop, l.done
	l.mu.Unlock()

	close(stop)
	<-done
	l.logger.Debug("render loop stopped", slog.Uint64("frames", l.frames.Load()))
}

func (l *Loop) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick renders one frame.
func (l *Loop) Tick() {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	if l.newSession.Swap(false) {
		vw, vh := l.viewport.ViewportSize()
		l.surface.Resize(int(vw*WidthFraction), int(vh*HeightFraction))
	}

	params := l.params.Parameters()
	w, h := l.surface.Size()

	l.surface.Clear()
	l.surface.PaintGradient()

	frame := l.sampler.Sample(l.graphs.Graph(), params)
	l.surface.Draw(l.mapper.Map(frame, params, float64(w), float64(h)))

	buf := l.surface.CopyTo(l.buffers[l.next])
	l.buffers[l.next] = buf
	l.next ^= 1
	l.sink.Present(buf)
	l.frames.Add(1)

	for _, hook := range l.hooks {
		hook()
	}
}
