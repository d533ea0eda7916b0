package render

import (
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/audio/mock"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/audio"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/logger"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/testutil"
)

type fixedParams struct {
	mu     sync.Mutex
	params domain.VisualParameters
}

func (p *fixedParams) Parameters() domain.VisualParameters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

type fixedViewport struct{ w, h float32 }

func (v fixedViewport) ViewportSize() (float32, float32) { return v.w, v.h }

type recordingSink struct {
	mu     sync.Mutex
	frames []*image.RGBA
}

func (s *recordingSink) Present(frame *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *recordingSink) last() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[len(s.frames)-1]
}

type nilGraph struct{}

func (nilGraph) Graph() *audio.Graph { return nil }

func newTestLoop(graphs GraphSource) (*Loop, *recordingSink, *fixedParams) {
	sink := &recordingSink{}
	params := &fixedParams{params: domain.DefaultVisualParameters()}
	l := NewLoop(DefaultConfig(), graphs, params, fixedViewport{w: 500, h: 500}, sink, logger.NewTestLogger())
	return l, sink, params
}

func TestLoop_FirstFrameOfSessionResizes(t *testing.T) {
	l, sink, _ := newTestLoop(nilGraph{})

	l.NewSession()
	l.Tick()

	w, h := l.Surface().Size()
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
	require.Equal(t, 1, sink.count())
	assert.Equal(t, image.Rect(0, 0, 400, 300), sink.last().Bounds())

	// Later frames keep the size.
	l.Surface().Resize(10, 10)
	l.Tick()
	w, _ = l.Surface().Size()
	assert.Equal(t, 10, w)
}

func TestLoop_TickWithoutGraphPaintsBackground(t *testing.T) {
	l, sink, _ := newTestLoop(nilGraph{})
	l.NewSession()
	l.Tick()

	img := sink.last()
	assert.Equal(t, DefaultGradient.Top, img.RGBAAt(0, 0))
	assert.Equal(t, uint64(1), l.Frames())
}

func TestLoop_DrawsBarsFromGraph(t *testing.T) {
	out := mock.NewOutput(8000)
	a := audio.NewSourceAdapter(out, audio.DefaultConfig(), logger.NewTestLogger())
	require.NoError(t, a.Install(a.BeginLoad(), mock.SineAsset("tone.wav", 8000, time.Second, 250)))
	require.NoError(t, a.Start())
	out.Pump(4096)

	l, sink, _ := newTestLoop(a)
	l.NewSession()
	l.Tick()

	// The tone is in bin 64 of 1024, so its bar starts at 64 * (400/1024*2.5 + 1).
	img := sink.last()
	barStart := 64 * (400.0/1024*2.5 + 1)
	x := int(barStart)
	px := img.RGBAAt(x+1, 299)
	assert.Equal(t, uint8(255), px.R, "bar at the tone bin reaches the bottom edge")
	assert.Equal(t, uint8(50), px.G)
}

func TestLoop_OverlayClearsBackground(t *testing.T) {
	l, sink, params := newTestLoop(nilGraph{})
	params.params.BassOverlayEnabled = true
	l.NewSession()
	l.Tick()

	// No bass data means no overlay commands and the gradient survives.
	assert.Equal(t, DefaultGradient.Top, sink.last().RGBAAt(0, 0))
}

func TestLoop_ReusesTwoFrameBuffers(t *testing.T) {
	l, sink, _ := newTestLoop(nilGraph{})

	l.NewSession()
	for range 4 {
		l.Tick()
	}

	sink.mu.Lock()
	frames := append([]*image.RGBA(nil), sink.frames...)
	sink.mu.Unlock()

	require.Len(t, frames, 4)
	assert.NotSame(t, frames[0], frames[1], "consecutive frames use different buffers")
	assert.Same(t, frames[0], frames[2])
	assert.Same(t, frames[1], frames[3])
	assert.Equal(t, DefaultGradient.Top, frames[3].RGBAAt(0, 0))
}

func TestLoop_FrameHooks(t *testing.T) {
	l, _, _ := newTestLoop(nilGraph{})
	var calls atomic.Int32
	l.AddFrameHook(func() { calls.Add(1) })

	l.Tick()
	l.Tick()
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoop_StartStop(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	l, sink, _ := newTestLoop(nilGraph{})
	l.NewSession()

	l.Start()
	l.Start()
	assert.True(t, l.IsRunning())

	assert.Eventually(t, func() bool { return sink.count() >= 3 }, 2*time.Second, 5*time.Millisecond)

	l.Stop()
	l.Stop()
	assert.False(t, l.IsRunning())

	n := sink.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, sink.count(), "no frames after Stop")

	// A stopped loop can be restarted.
	l.Start()
	assert.Eventually(t, func() bool { return sink.count() > n }, 2*time.Second, 5*time.Millisecond)
	l.Stop()
}
