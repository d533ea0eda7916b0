package service

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/audio/mock"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/eventbus"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/metadata"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/audio"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/logger"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/testutil"
)

const transportTestRate = 1000

// eventRecorder collects every published event.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *eventRecorder) record(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) ofType(t domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

type transportFixture struct {
	service  *TransportService
	source   *audio.SourceAdapter
	output   *mock.Output
	decoder  *mock.Decoder
	recorder *eventRecorder
}

// Helper to create a test transport service
func newTestTransportService(t *testing.T, duration time.Duration) *transportFixture {
	t.Helper()

	log := logger.NewTestLogger()
	output := mock.NewOutput(transportTestRate)
	source := audio.NewSourceAdapter(output, audio.DefaultConfig(), log)
	decoder := mock.NewDecoder(transportTestRate, duration)
	bus := eventbus.NewSyncEventBus()

	recorder := &eventRecorder{}
	bus.SubscribeAll(recorder.record)

	service := NewTransportService(log, source, decoder, metadata.NewTagReader(log), bus)
	t.Cleanup(func() { _ = service.Shutdown() })

	return &transportFixture{
		service:  service,
		source:   source,
		output:   output,
		decoder:  decoder,
		recorder: recorder,
	}
}

func (f *transportFixture) load(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, <-f.service.Load(name, []byte("payload")))
}

func TestTransportService_InitialState(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	assert.Equal(t, domain.StateIdle, f.service.State())
	assert.Equal(t, domain.DefaultVisualParameters(), f.service.Parameters())
	assert.Equal(t, domain.TimeProjection{}, f.service.Projection())
	assert.Equal(t, domain.DefaultVolume, f.service.Volume())
}

func TestTransportService_LoadStartsPlayback(t *testing.T) {
	f := newTestTransportService(t, 2*time.Minute)
	f.load(t, "song.mp3")

	assert.Equal(t, domain.StatePlaying, f.service.State())
	assert.Equal(t, 1, f.output.Queued())

	loaded := f.recorder.ofType(domain.EventAssetLoaded)
	require.Len(t, loaded, 1)
	e := loaded[0].(domain.AssetLoadedEvent)
	assert.Equal(t, "song.mp3", e.Title, "untagged payloads fall back to the name")
	assert.Equal(t, 2*time.Minute, e.Asset.Duration())

	started := f.recorder.ofType(domain.EventPlaybackStarted)
	require.Len(t, started, 1)
	assert.Equal(t, "02:00", started[0].(domain.PlaybackStartedEvent).Projection.DurationText())
}

func TestTransportService_SeekHalfway(t *testing.T) {
	f := newTestTransportService(t, 120*time.Second)
	f.load(t, "song.mp3")

	require.NoError(t, f.service.Seek(50))

	p := f.service.Projection()
	assert.Equal(t, "01:00", p.CurrentText())
	assert.Equal(t, "02:00", p.DurationText())
	assert.Equal(t, domain.StatePlaying, f.service.State())

	seeks := f.recorder.ofType(domain.EventSeekCompleted)
	require.Len(t, seeks, 1)
	assert.Equal(t, 60*time.Second, seeks[0].(domain.SeekCompletedEvent).Projection.Current)
}

func TestTransportService_SeekValidation(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	assert.ErrorIs(t, f.service.Seek(50), domain.ErrNoAssetLoaded)
	assert.ErrorIs(t, f.service.Seek(-1), domain.ErrInvalidSeek)
	assert.ErrorIs(t, f.service.Seek(100.5), domain.ErrInvalidSeek)

	f.load(t, "a.wav")
	require.NoError(t, f.service.Pause())
	require.NoError(t, f.service.Seek(100))
	assert.Equal(t, domain.StatePaused, f.service.State(), "seek restores the previous state")
}

func TestTransportService_StaleLoadDiscarded(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	release := f.decoder.Hold("old.mp3")
	oldResult := f.service.Load("old.mp3", []byte("old"))

	f.decoder.SetDuration(3 * time.Second)
	newResult := f.service.Load("new.mp3", []byte("new"))
	require.NoError(t, <-newResult)

	release()
	err := <-oldResult
	assert.ErrorIs(t, err, domain.ErrLoadSuperseded)

	loaded := f.recorder.ofType(domain.EventAssetLoaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new.mp3", loaded[0].(domain.AssetLoadedEvent).Title)
	assert.Equal(t, 3*time.Second, f.service.Projection().Duration)
	assert.Equal(t, 1, f.output.Queued())
}

func TestTransportService_DecodeErrorKeepsState(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	f.decoder.SetFailDecode(true)
	err := <-f.service.Load("bad.mp3", []byte("junk"))
	var de *domain.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.StateIdle, f.service.State())

	f.decoder.SetFailDecode(false)
	f.load(t, "good.mp3")
	graph := f.source.Graph()

	f.decoder.SetFailDecode(true)
	err = <-f.service.Load("bad.mp3", []byte("junk"))
	require.Error(t, err)
	assert.Equal(t, domain.StatePlaying, f.service.State())
	assert.Same(t, graph, f.source.Graph(), "previous graph stays intact")

	failed := f.recorder.ofType(domain.EventDecodeFailed)
	require.Len(t, failed, 2)
	assert.Equal(t, "bad.mp3", failed[1].(domain.DecodeFailedEvent).Name)
}

func TestTransportService_StaleDecodeFailureIsSilent(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	release := f.decoder.Hold("old.mp3")
	f.decoder.SetFailDecode(true)
	oldResult := f.service.Load("old.mp3", []byte("old"))
	require.Eventually(t, func() bool { return f.decoder.Calls() == 1 }, time.Second, 5*time.Millisecond)

	f.decoder.SetFailDecode(false)
	require.NoError(t, <-f.service.Load("new.mp3", []byte("new")))

	release()
	assert.ErrorIs(t, <-oldResult, domain.ErrLoadSuperseded)
	assert.Empty(t, f.recorder.ofType(domain.EventDecodeFailed))
	assert.Equal(t, domain.StatePlaying, f.service.State())
	loaded := f.recorder.ofType(domain.EventAssetLoaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new.mp3", loaded[0].(domain.AssetLoadedEvent).Title)
}

func TestTransportService_LoadFile(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	assert.ErrorIs(t, <-f.service.LoadFile(""), domain.ErrNoFileSelected)
	assert.ErrorIs(t, <-f.service.Load("empty", nil), domain.ErrNoFileSelected)

	err := <-f.service.LoadFile(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Len(t, f.recorder.ofType(domain.EventDecodeFailed), 1)

	path := filepath.Join(t.TempDir(), "track.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))
	require.NoError(t, <-f.service.LoadFile(path))

	loaded := f.recorder.ofType(domain.EventAssetLoaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, "track.wav", loaded[0].(domain.AssetLoadedEvent).Title)
}

func TestTransportService_PlayPause(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	assert.ErrorIs(t, f.service.Play(), domain.ErrNoAssetLoaded)
	assert.ErrorIs(t, f.service.Pause(), domain.ErrNoAssetLoaded)
	assert.ErrorIs(t, f.service.TogglePlay(), domain.ErrNoAssetLoaded)

	f.load(t, "a.wav")

	require.NoError(t, f.service.Play(), "play while playing is a no-op")
	assert.Len(t, f.recorder.ofType(domain.EventPlaybackStarted), 1)

	require.NoError(t, f.service.TogglePlay())
	assert.Equal(t, domain.StatePaused, f.service.State())
	assert.Len(t, f.recorder.ofType(domain.EventPlaybackPaused), 1)

	f.output.Pump(100)
	assert.Zero(t, f.service.Projection().Current, "paused clock does not move")

	require.NoError(t, f.service.Pause())
	assert.Len(t, f.recorder.ofType(domain.EventPlaybackPaused), 1)

	require.NoError(t, f.service.TogglePlay())
	assert.Equal(t, domain.StatePlaying, f.service.State())
	f.output.Pump(100)
	assert.Equal(t, 100*time.Millisecond, f.service.Projection().Current)
}

func TestTransportService_ModeChangeKeepsTransport(t *testing.T) {
	f := newTestTransportService(t, time.Second)
	f.load(t, "a.wav")
	require.NoError(t, f.service.Pause())

	require.NoError(t, f.service.SetMode(domain.ModeCircles))
	assert.Equal(t, domain.StatePaused, f.service.State())
	assert.Equal(t, domain.ModeCircles, f.service.Parameters().Mode)

	assert.ErrorIs(t, f.service.SetMode("spiral"), domain.ErrUnknownMode)
	assert.Equal(t, domain.ModeCircles, f.service.Parameters().Mode)

	changes := f.recorder.ofType(domain.EventParametersChanged)
	require.Len(t, changes, 1)
}

func TestTransportService_BassBoostWithoutAsset(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	require.NoError(t, f.service.SetBassBoost(true))
	assert.True(t, f.service.Parameters().BassOverlayEnabled)
	assert.Nil(t, f.source.Topology())
	assert.Empty(t, f.recorder.ofType(domain.EventGraphRebuilt))
	assert.Equal(t, domain.StateIdle, f.service.State())
}

func TestTransportService_BassBoostRebuildsGraph(t *testing.T) {
	f := newTestTransportService(t, time.Second)
	f.load(t, "a.wav")
	plain := f.source.Topology()

	require.NoError(t, f.service.SetBassBoost(true))
	rebuilt := f.recorder.ofType(domain.EventGraphRebuilt)
	require.Len(t, rebuilt, 1)
	assert.Equal(t,
		[]string{"source", "bassFilter", "gain", "analyser", "bassAnalyser", "destination"},
		rebuilt[0].(domain.GraphRebuiltEvent).Stages)

	require.NoError(t, f.service.SetBassBoost(true))
	assert.Len(t, f.recorder.ofType(domain.EventGraphRebuilt), 1, "same state is a no-op")

	require.NoError(t, f.service.SetBassBoost(false))
	assert.Equal(t, plain, f.source.Topology())
	assert.Equal(t, domain.StatePlaying, f.service.State())
}

func TestTransportService_ParameterValidation(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	assert.ErrorIs(t, f.service.SetVolume(1.5), domain.ErrInvalidVolume)
	assert.ErrorIs(t, f.service.SetVolume(-0.1), domain.ErrInvalidVolume)
	assert.ErrorIs(t, f.service.SetSensitivity(0), domain.ErrInvalidSensitivity)
	assert.ErrorIs(t, f.service.SetBassGain(41), domain.ErrInvalidBassGain)

	require.NoError(t, f.service.SetVolume(0.3))
	require.NoError(t, f.service.SetSensitivity(9))
	require.NoError(t, f.service.SetBassGain(-20))

	assert.Equal(t, 0.3, f.service.Volume())
	params := f.service.Parameters()
	assert.Equal(t, 9.0, params.Sensitivity)
	assert.Equal(t, -20.0, params.BassGain)

	volumes := f.recorder.ofType(domain.EventVolumeChanged)
	require.Len(t, volumes, 1)
	assert.Equal(t, 0.3, volumes[0].(domain.VolumeChangedEvent).Volume)

	// Gain set before load applies to the new graph.
	f.load(t, "a.wav")
	assert.Equal(t, 0.3, f.source.Graph().Gain().Value())
}

func TestTransportService_PublishProgress(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	f.service.PublishProgress()
	assert.Empty(t, f.recorder.ofType(domain.EventTimeProgress), "idle publishes nothing")

	f.load(t, "a.wav")
	f.output.Pump(250)
	f.service.PublishProgress()

	progress := f.recorder.ofType(domain.EventTimeProgress)
	require.Len(t, progress, 1)
	assert.Equal(t, 250*time.Millisecond, progress[0].(domain.TimeProgressEvent).Projection.Current)

	require.NoError(t, f.service.Pause())
	f.service.PublishProgress()
	assert.Len(t, f.recorder.ofType(domain.EventTimeProgress), 1, "paused publishes nothing")
}

func TestTransportService_NaturalEnd(t *testing.T) {
	f := newTestTransportService(t, 100*time.Millisecond)
	f.load(t, "short.wav")

	f.output.Pump(200)
	f.service.PublishProgress()

	assert.Equal(t, domain.StatePaused, f.service.State())
	ended := f.recorder.ofType(domain.EventPlaybackEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, "00:00", ended[0].(domain.PlaybackEndedEvent).Projection.DurationText())
	assert.Equal(t, 100*time.Millisecond, ended[0].(domain.PlaybackEndedEvent).Projection.Current)

	// Playing again restarts from the beginning.
	require.NoError(t, f.service.Play())
	assert.Equal(t, domain.StatePlaying, f.service.State())
	assert.Zero(t, f.service.Projection().Current)
	f.output.Pump(50)
	assert.Equal(t, 50*time.Millisecond, f.service.Projection().Current)
}

func TestTransportService_EndDetectedWithoutProgressSubscribers(t *testing.T) {
	log := logger.NewTestLogger()
	output := mock.NewOutput(transportTestRate)
	source := audio.NewSourceAdapter(output, audio.DefaultConfig(), log)
	bus := eventbus.NewSyncEventBus()
	service := NewTransportService(log, source, mock.NewDecoder(transportTestRate, 100*time.Millisecond),
		metadata.NewTagReader(log), bus)
	t.Cleanup(func() { _ = service.Shutdown() })

	var ended int
	bus.Subscribe(domain.EventPlaybackEnded, func(domain.Event) { ended++ })
	require.False(t, bus.HasSubscribers(domain.EventTimeProgress))

	require.NoError(t, <-service.Load("short.wav", []byte("payload")))
	output.Pump(50)
	service.PublishProgress()
	assert.Equal(t, domain.StatePlaying, service.State())

	output.Pump(100)
	service.PublishProgress()
	assert.Equal(t, domain.StatePaused, service.State())
	assert.Equal(t, 1, ended)
}

func TestTransportService_Restore(t *testing.T) {
	f := newTestTransportService(t, time.Second)

	f.service.Restore(domain.Preferences{
		Volume:      0.5,
		Sensitivity: 3,
		BassGain:    99,
		Mode:        domain.ModeWaves,
	})

	params := f.service.Parameters()
	assert.Equal(t, 0.5, f.service.Volume())
	assert.Equal(t, 3.0, params.Sensitivity)
	assert.Equal(t, domain.DefaultBassGain, params.BassGain, "out of range values are ignored")
	assert.Equal(t, domain.ModeWaves, params.Mode)
	assert.Empty(t, f.recorder.ofType(domain.EventParametersChanged))
}

func TestTransportService_ShutdownWaitsForLoads(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	log := logger.NewTestLogger()
	output := mock.NewOutput(transportTestRate)
	source := audio.NewSourceAdapter(output, audio.DefaultConfig(), log)
	decoder := mock.NewDecoder(transportTestRate, time.Second)
	service := NewTransportService(log, source, decoder, metadata.NewTagReader(log), eventbus.NewSyncEventBus())

	release := decoder.Hold("slow.mp3")
	result := service.Load("slow.mp3", []byte("x"))

	go release()
	require.NoError(t, service.Shutdown())

	// The decode may finish before or after Shutdown invalidates it.
	if err := <-result; err != nil {
		assert.ErrorIs(t, err, domain.ErrLoadSuperseded)
	}
	assert.True(t, output.IsClosed())
	assert.Equal(t, domain.StateIdle, service.State())
}
