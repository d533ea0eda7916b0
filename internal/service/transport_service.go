// Package service provides the application logic of the audio visualiser.
package service

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

// TransportService is the transport state machine. It owns the visual
// parameters and drives the signal source.
//
// States: Idle -> Playing <-> Paused, with Seeking transient during a seek.
// All operations are thread-safe via sync.RWMutex.
type TransportService struct {
	// Dependencies (injected)
	logger   *slog.Logger
	source   ports.SignalSource
	decoder  ports.Decoder
	metadata ports.MetadataReader
	bus      ports.EventBus

	// State
	state  domain.TransportState
	params domain.VisualParameters
	volume float64

	// Concurrency control
	mu        sync.RWMutex
	installMu sync.Mutex     // orders install and its events across loads
	loads     sync.WaitGroup // in-flight decodes
}

// NewTransportService creates a new transport service in the Idle state.
func NewTransportService(
	logger *slog.Logger,
	source ports.SignalSource,
	decoder ports.Decoder,
	metadata ports.MetadataReader,
	bus ports.EventBus,
) *TransportService {
	service := &TransportService{
		logger:   logger,
		source:   source,
		decoder:  decoder,
		metadata: metadata,
		bus:      bus,
		state:    domain.StateIdle,
		params:   domain.DefaultVisualParameters(),
		volume:   domain.DefaultVolume,
	}

	logger.Debug("transport service initialized")
	return service
}

// Restore applies saved preferences without publishing events.
// Invalid values are ignored and keep their defaults.
func (s *TransportService) Restore(prefs domain.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefs.Volume >= 0 && prefs.Volume <= 1 {
		if err := s.source.SetGain(prefs.Volume); err == nil {
			s.volume = prefs.Volume
		}
	}
	if prefs.Sensitivity > 0 {
		s.params.Sensitivity = prefs.Sensitivity
	}
	if validBassGain(prefs.BassGain) {
		s.params.BassGain = prefs.BassGain
	}
	if prefs.Mode.Valid() {
		s.params.Mode = prefs.Mode
	}
}

// LoadFile reads and decodes the file at path, replacing the current asset.
// The returned channel yields the outcome once and is then closed.
func (s *TransportService) LoadFile(path string) <-chan error {
	if path == "" {
		return done(domain.ErrNoFileSelected)
	}

	token := s.source.BeginLoad()
	return s.spawn(func() error {
		raw, err := os.ReadFile(path)
		if err != nil {
			return s.failLoad(token, filepath.Base(path), err)
		}
		return s.load(token, filepath.Base(path), raw)
	})
}

// Load decodes raw, replacing the current asset. A load started later
// always wins; earlier loads finishing afterwards are discarded.
// The returned channel yields the outcome once and is then closed.
func (s *TransportService) Load(name string, raw []byte) <-chan error {
	if len(raw) == 0 {
		return done(domain.ErrNoFileSelected)
	}

	token := s.source.BeginLoad()
	return s.spawn(func() error {
		return s.load(token, name, raw)
	})
}

func (s *TransportService) spawn(fn func() error) <-chan error {
	result := make(chan error, 1)
	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		result <- fn()
		close(result)
	}()
	return result
}

func done(err error) <-chan error {
	result := make(chan error, 1)
	result <- err
	close(result)
	return result
}

// load runs on a decode goroutine.
func (s *TransportService) load(token uint64, name string, raw []byte) error {
	s.logger.Debug("decoding", slog.String("name", name), slog.Int("size", len(raw)))

	asset, err := s.decoder.Decode(name, raw)
	if err != nil {
		return s.failLoad(token, name, err)
	}

	title := s.metadata.Title(raw)
	if title == "" {
		title = name
	}

	s.installMu.Lock()
	defer s.installMu.Unlock()

	s.mu.Lock()
	if err := s.source.Install(token, asset); err != nil {
		s.mu.Unlock()
		return s.failLoad(token, name, err)
	}
	if err := s.source.Start(); err != nil {
		s.state = domain.StatePaused
		s.mu.Unlock()
		return err
	}
	s.state = domain.StatePlaying
	projection := s.projectionLocked()
	s.mu.Unlock()

	s.logger.Info("asset loaded", slog.String("name", name), slog.String("title", title), slog.Duration("duration", asset.Duration()))

	s.bus.Publish(domain.NewAssetLoadedEvent(asset, title))
	s.bus.Publish(domain.NewPlaybackStartedEvent(projection))
	return nil
}

// failLoad reports a failed load. A load that was superseded while it ran
// fails silently with domain.ErrLoadSuperseded.
func (s *TransportService) failLoad(token uint64, name string, err error) error {
	if errors.Is(err, domain.ErrLoadSuperseded) || !s.source.Current(token) {
		s.logger.Debug("load superseded", slog.String("name", name), slog.Any("error", err))
		return domain.ErrLoadSuperseded
	}

	s.logger.Warn("load failed", slog.String("name", name), slog.Any("error", err))
	s.bus.Publish(domain.NewDecodeFailedEvent(name, err))
	return err
}

// Play resumes playback. Playing while already playing is a no-op.
func (s *TransportService) Play() error {
	s.mu.Lock()

	switch s.state {
	case domain.StateIdle:
		s.mu.Unlock()
		return domain.ErrNoAssetLoaded
	case domain.StatePlaying:
		s.mu.Unlock()
		return nil
	}

	if err := s.source.Resume(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = domain.StatePlaying
	projection := s.projectionLocked()
	s.mu.Unlock()

	s.bus.Publish(domain.NewPlaybackStartedEvent(projection))
	return nil
}

// Pause suspends playback. Pausing while paused is a no-op.
func (s *TransportService) Pause() error {
	s.mu.Lock()

	switch s.state {
	case domain.StateIdle:
		s.mu.Unlock()
		return domain.ErrNoAssetLoaded
	case domain.StatePaused:
		s.mu.Unlock()
		return nil
	}

	if err := s.source.Suspend(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = domain.StatePaused
	projection := s.projectionLocked()
	s.mu.Unlock()

	s.bus.Publish(domain.NewPlaybackPausedEvent(projection))
	return nil
}

// TogglePlay pauses when playing and plays otherwise.
func (s *TransportService) TogglePlay() error {
	if s.State() == domain.StatePlaying {
		return s.Pause()
	}
	return s.Play()
}

// Seek moves playback to percent of the asset duration.
// The transport returns to its previous state afterwards.
func (s *TransportService) Seek(percent float64) error {
	if percent < 0 || percent > 100 {
		return domain.NewValidationError("seek", percent, domain.ErrInvalidSeek)
	}

	s.mu.Lock()
	if s.state == domain.StateIdle {
		s.mu.Unlock()
		return domain.ErrNoAssetLoaded
	}

	previous := s.state
	s.state = domain.StateSeeking
	duration := s.source.Duration()
	target := time.Duration(float64(duration) * percent / 100)
	err := s.source.Seek(target)
	s.state = previous
	projection := s.projectionLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.bus.Publish(domain.NewSeekCompletedEvent(projection))
	return nil
}

// SetVolume sets the output gain (0.0 to 1.0).
func (s *TransportService) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, domain.ErrInvalidVolume)
	}

	s.mu.Lock()
	if err := s.source.SetGain(volume); err != nil {
		s.mu.Unlock()
		return err
	}
	s.volume = volume
	s.mu.Unlock()

	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// SetSensitivity sets the magnitude multiplier of the visuals.
func (s *TransportService) SetSensitivity(sensitivity float64) error {
	if !(sensitivity > 0) {
		return domain.NewValidationError("sensitivity", sensitivity, domain.ErrInvalidSensitivity)
	}

	return s.updateParams(func(p *domain.VisualParameters) error {
		p.Sensitivity = sensitivity
		return nil
	})
}

// SetMode selects the visual style. The transport state is not affected.
func (s *TransportService) SetMode(mode domain.Mode) error {
	if !mode.Valid() {
		return domain.NewValidationError("mode", mode, domain.ErrUnknownMode)
	}

	return s.updateParams(func(p *domain.VisualParameters) error {
		p.Mode = mode
		return nil
	})
}

// SetBassGain sets the low-shelf gain in dB.
func (s *TransportService) SetBassGain(gainDB float64) error {
	if !validBassGain(gainDB) {
		return domain.NewValidationError("bassGain", gainDB, domain.ErrInvalidBassGain)
	}

	return s.updateParams(func(p *domain.VisualParameters) error {
		if err := s.source.SetBassGain(gainDB); err != nil {
			return err
		}
		p.BassGain = gainDB
		return nil
	})
}

// SetBassBoost inserts or removes the bass filter and toggles the bass overlay.
// Without a loaded asset only the setting changes.
func (s *TransportService) SetBassBoost(enabled bool) error {
	s.mu.Lock()
	if s.params.BassOverlayEnabled == enabled {
		s.mu.Unlock()
		return nil
	}

	before := s.source.Topology()
	if err := s.source.SetBassBoost(enabled, s.params.BassGain); err != nil {
		s.mu.Unlock()
		return err
	}
	after := s.source.Topology()
	s.params.BassOverlayEnabled = enabled
	params := s.params
	s.mu.Unlock()

	s.bus.Publish(domain.NewParametersChangedEvent(params))
	if after != nil && !slices.Equal(before, after) {
		s.logger.Debug("graph rebuilt", slog.Any("stages", after))
		s.bus.Publish(domain.NewGraphRebuiltEvent(after))
	}
	return nil
}

func (s *TransportService) updateParams(fn func(p *domain.VisualParameters) error) error {
	s.mu.Lock()
	params := s.params
	if err := fn(&params); err != nil {
		s.mu.Unlock()
		return err
	}
	s.params = params
	s.mu.Unlock()

	s.bus.Publish(domain.NewParametersChangedEvent(params))
	return nil
}

// PublishProgress publishes the time projection while playing. It is meant
// to run once per rendered frame, and detects the natural end of the asset.
func (s *TransportService) PublishProgress() {
	s.mu.RLock()
	playing := s.state == domain.StatePlaying
	s.mu.RUnlock()

	if !playing {
		return
	}

	if s.source.Ended() {
		s.handleEnded()
		return
	}

	if !s.bus.HasSubscribers(domain.EventTimeProgress) {
		return
	}
	s.bus.Publish(domain.NewTimeProgressEvent(s.Projection()))
}

// handleEnded moves a finished asset to Paused.
func (s *TransportService) handleEnded() {
	s.mu.Lock()
	if s.state != domain.StatePlaying || !s.source.Ended() {
		s.mu.Unlock()
		return
	}

	if err := s.source.Suspend(); err != nil {
		s.logger.Warn("failed to suspend finished asset", slog.Any("error", err))
	}
	s.state = domain.StatePaused
	projection := s.projectionLocked()
	s.mu.Unlock()

	s.logger.Debug("playback ended")
	s.bus.Publish(domain.NewPlaybackEndedEvent(projection))
}

// State returns the current transport state.
func (s *TransportService) State() domain.TransportState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Parameters returns a snapshot of the visual parameters.
func (s *TransportService) Parameters() domain.VisualParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Volume returns the current volume.
func (s *TransportService) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// Projection returns the current time display.
func (s *TransportService) Projection() domain.TimeProjection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectionLocked()
}

func (s *TransportService) projectionLocked() domain.TimeProjection {
	if s.state == domain.StateIdle {
		return domain.TimeProjection{}
	}
	return domain.TimeProjection{
		Current:  s.source.Position(),
		Duration: s.source.Duration(),
	}
}

// Shutdown discards in-flight loads and releases the signal source.
func (s *TransportService) Shutdown() error {
	s.source.BeginLoad()
	s.loads.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.StateIdle
	return s.source.Close()
}

func validBassGain(gainDB float64) bool {
	return gainDB >= domain.MinBassGain && gainDB <= domain.MaxBassGain
}

// Verify that TransportService implements the expected interface patterns
var _ interface {
	LoadFile(string) <-chan error
	Load(string, []byte) <-chan error
	Play() error
	Pause() error
	TogglePlay() error
	Seek(float64) error
	SetVolume(float64) error
	SetSensitivity(float64) error
	SetMode(domain.Mode) error
	SetBassGain(float64) error
	SetBassBoost(bool) error
	PublishProgress()
	State() domain.TransportState
	Parameters() domain.VisualParameters
	Projection() domain.TimeProjection
	Shutdown() error
} = (*TransportService)(nil)
