package app

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/repository/memory"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/service"
)

func newTestConfig() Config {
	config := DefaultConfig()
	config.UseMockAudio = true
	config.SampleRate = 8000
	config.TestFyneApp = test.NewApp()
	return config
}

// writeTone writes a short stereo WAV file and returns its path.
func writeTone(t *testing.T, rate int, duration time.Duration) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	frames := int(duration.Seconds() * float64(rate))
	i := 0
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n := 0
		for n < len(samples) && i < frames {
			v := 0.5 * math.Sin(2*math.Pi*250*float64(i)/float64(rate))
			samples[n] = [2]float64{v, v}
			n++
			i++
		}
		return n, n > 0
	})

	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, tone, format))
	require.NoError(t, f.Close())
	return path
}

func TestNewApplication(t *testing.T) {
	app, err := NewApplication(newTestConfig())
	require.NoError(t, err)
	require.NotNil(t, app)

	// Verify all services were created
	transport, preference := app.GetServices()
	assert.NotNil(t, transport)
	assert.NotNil(t, preference)
	assert.Equal(t, domain.StateIdle, transport.State())

	assert.NotNil(t, app.GetEventBus())
	assert.NotNil(t, app.GetFyneApp())
	assert.NotNil(t, app.GetMainWindow())
	assert.False(t, app.GetRenderLoop().IsRunning(), "loop starts with the first asset")

	assert.NoError(t, app.Shutdown())
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "club.hack.audiovisualiser", config.AppID)
	assert.Equal(t, "Audio Visualiser", config.AppName)
	assert.Equal(t, 44100, config.SampleRate)
	assert.Equal(t, 60, config.FrameRate)
	assert.Equal(t, 2048, config.FFTSize)
	assert.Equal(t, 256, config.BassFFTSize)
	assert.False(t, config.UseMockAudio)
	assert.Nil(t, config.TestFyneApp)
}

func TestApplicationLifecycle(t *testing.T) {
	app, err := NewApplication(newTestConfig())
	require.NoError(t, err)

	// Run would normally block, but we're not calling it in test

	assert.NoError(t, app.Shutdown())

	// Shutdown again should not panic
	assert.NoError(t, app.Shutdown())
}

func TestApplicationRestoresPreferences(t *testing.T) {
	config := newTestConfig()

	repo := memory.NewPreferencesRepository(config.TestFyneApp.Preferences())
	require.NoError(t, repo.SaveVolume(0.4))
	require.NoError(t, repo.SaveSensitivity(8))
	require.NoError(t, repo.SaveMode(domain.ModeCircles))
	require.NoError(t, repo.SaveTheme(service.ThemeLight))

	app, err := NewApplication(config)
	require.NoError(t, err)
	defer app.Shutdown()

	transport, preference := app.GetServices()
	assert.InDelta(t, 0.4, transport.Volume(), 1e-9)
	assert.Equal(t, 8.0, transport.Parameters().Sensitivity)
	assert.Equal(t, domain.ModeCircles, transport.Parameters().Mode)
	assert.Equal(t, service.ThemeLight, preference.GetTheme())
}

func TestApplicationPersistsParameterChanges(t *testing.T) {
	config := newTestConfig()
	app, err := NewApplication(config)
	require.NoError(t, err)
	defer app.Shutdown()

	transport, _ := app.GetServices()
	require.NoError(t, transport.SetMode(domain.ModeWaves))
	require.NoError(t, transport.SetVolume(0.25))

	repo := memory.NewPreferencesRepository(config.TestFyneApp.Preferences())
	mode, err := repo.LoadMode()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeWaves, mode)

	volume, err := repo.LoadVolume()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, volume, 1e-9)
}

func TestApplicationTracesEventsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	config := newTestConfig()
	config.LogLevel = slog.LevelDebug
	config.LogOutput = &buf
	app, err := NewApplication(config)
	require.NoError(t, err)
	defer app.Shutdown()

	transport, _ := app.GetServices()
	require.NoError(t, transport.SetMode(domain.ModeWaves))

	assert.Contains(t, buf.String(), "type=parameters.changed")
	assert.NotContains(t, buf.String(), "type=playback.progress")
}

func TestApplicationSkipsEventTraceAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	config := newTestConfig()
	config.LogLevel = slog.LevelInfo
	config.LogOutput = &buf
	app, err := NewApplication(config)
	require.NoError(t, err)
	defer app.Shutdown()

	transport, _ := app.GetServices()
	require.NoError(t, transport.SetMode(domain.ModeWaves))

	assert.NotContains(t, buf.String(), "type=parameters.changed")
}

func TestApplicationLoadStartsRendering(t *testing.T) {
	config := newTestConfig()
	config.FrameRate = 120

	app, err := NewApplication(config)
	require.NoError(t, err)
	defer app.Shutdown()

	path := writeTone(t, config.SampleRate, 2*time.Second)
	transport, _ := app.GetServices()
	require.NoError(t, <-transport.LoadFile(path))

	assert.Equal(t, domain.StatePlaying, transport.State())
	assert.Equal(t, "00:02", transport.Projection().DurationText())

	loop := app.GetRenderLoop()
	assert.True(t, loop.IsRunning())
	assert.Eventually(t, func() bool {
		return app.GetMainWindow().Surface().Presented() > 0
	}, 2*time.Second, 10*time.Millisecond)

	// The surface is 80% x 60% of the viewport.
	frame := app.GetMainWindow().Surface().Frame()
	require.NotNil(t, frame)
	vw, vh := app.GetMainWindow().ViewportSize()
	assert.Equal(t, int(vw*0.8), frame.Bounds().Dx())
	assert.Equal(t, int(vh*0.6), frame.Bounds().Dy())

	require.NoError(t, app.Shutdown())
	assert.False(t, loop.IsRunning())
	assert.Equal(t, domain.StateIdle, transport.State())
}
