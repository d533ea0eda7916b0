// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/service"
)

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
// Methods may be called from any goroutine.
type UIView interface {
	// Transport updates
	SetPlayState(playing bool)
	SetTitle(title string)
	SetTime(current, duration string)
	SetSeekPercent(percent float64)

	// Parameter updates
	SetVolume(volume float64)
	SetParameters(params domain.VisualParameters)
	SetTheme(theme string)

	// Overview of the loaded asset
	SetOverview(asset *domain.AudioAsset)

	// Notifications
	ShowError(title string, err error)
}

// RenderLoop is the part of the render loop the presenter drives.
type RenderLoop interface {
	Start()
	Stop()
	NewSession()
}

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to UI updates
// - Translate UI commands to service method calls
// - Start the render loop once the first asset is loaded
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	transportService  *service.TransportService
	preferenceService *service.PreferenceService
	loop              RenderLoop

	eventBus ports.EventBus
	view     UIView

	// Presentation state
	subscriptions []domain.SubscriptionID
	loads         sync.WaitGroup

	mu           sync.Mutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter.
func NewPresenter(
	logger *slog.Logger,
	transportService *service.TransportService,
	preferenceService *service.PreferenceService,
	loop RenderLoop,
	eventBus ports.EventBus,
	view UIView,
) *Presenter {
	p := &Presenter{
		logger:            logger,
		transportService:  transportService,
		preferenceService: preferenceService,
		loop:              loop,
		eventBus:          eventBus,
		view:              view,
	}

	p.subscribeToEvents()
	p.syncInitialState()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Load events
		domain.EventAssetLoaded:  p.onAssetLoaded,
		domain.EventDecodeFailed: p.onDecodeFailed,

		// Transport events
		domain.EventPlaybackStarted: p.onPlaybackStarted,
		domain.EventPlaybackPaused:  p.onPlaybackStopped,
		domain.EventPlaybackEnded:   p.onPlaybackStopped,
		domain.EventSeekCompleted:   p.onProgress,
		domain.EventTimeProgress:    p.onProgress,

		// Parameter events
		domain.EventVolumeChanged:     p.onVolumeChanged,
		domain.EventParametersChanged: p.onParametersChanged,
		domain.EventGraphRebuilt:      p.onGraphRebuilt,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.eventBus.Subscribe(eventType, handler))
	}
}

// syncInitialState pushes the restored settings into the view.
func (p *Presenter) syncInitialState() {
	p.view.SetVolume(p.transportService.Volume())
	p.view.SetParameters(p.transportService.Parameters())
	p.view.SetTheme(p.preferenceService.GetTheme())
	p.view.SetPlayState(p.transportService.State() == domain.StatePlaying)
	p.showProjection(p.transportService.Projection())
}

// Event handlers

func (p *Presenter) onAssetLoaded(event domain.Event) {
	e, ok := event.(domain.AssetLoadedEvent)
	if !ok {
		return
	}

	p.view.SetTitle(e.Title)
	p.view.SetOverview(e.Asset)

	p.loop.NewSession()
	p.loop.Start()
}

func (p *Presenter) onDecodeFailed(event domain.Event) {
	e, ok := event.(domain.DecodeFailedEvent)
	if !ok {
		return
	}

	p.view.ShowError("Could not open file", e.Error)
}

func (p *Presenter) onPlaybackStarted(event domain.Event) {
	e, ok := event.(domain.PlaybackStartedEvent)
	if !ok {
		return
	}

	p.view.SetPlayState(true)
	p.showProjection(e.Projection)
}

// onPlaybackStopped handles both pause and the natural end of the asset.
func (p *Presenter) onPlaybackStopped(event domain.Event) {
	p.view.SetPlayState(false)

	switch e := event.(type) {
	case domain.PlaybackPausedEvent:
		p.showProjection(e.Projection)
	case domain.PlaybackEndedEvent:
		p.showProjection(e.Projection)
	}
}

func (p *Presenter) onProgress(event domain.Event) {
	switch e := event.(type) {
	case domain.TimeProgressEvent:
		p.showProjection(e.Projection)
	case domain.SeekCompletedEvent:
		p.showProjection(e.Projection)
	}
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}

	p.view.SetVolume(e.Volume)
}

func (p *Presenter) onParametersChanged(event domain.Event) {
	e, ok := event.(domain.ParametersChangedEvent)
	if !ok {
		return
	}

	p.view.SetParameters(e.Parameters)
}

func (p *Presenter) onGraphRebuilt(event domain.Event) {
	e, ok := event.(domain.GraphRebuiltEvent)
	if !ok {
		return
	}

	p.logger.Debug("playback graph rebuilt", slog.Any("stages", e.Stages))
}

func (p *Presenter) showProjection(projection domain.TimeProjection) {
	p.view.SetTime(projection.CurrentText(), projection.DurationText())
	p.view.SetSeekPercent(projection.Percent())
}

// UI Command handlers (called by UI)

// OnFileOpened starts loading the file at path.
func (p *Presenter) OnFileOpened(path string) {
	result := p.transportService.LoadFile(path)

	p.loads.Add(1)
	go func() {
		defer p.loads.Done()
		if err := <-result; err != nil {
			p.handleLoadError(path, err)
		}
	}()
}

// handleLoadError logs a failed load. Failures of the latest load reach the
// view through DecodeFailedEvent; only a missing selection is shown here.
func (p *Presenter) handleLoadError(path string, err error) {
	switch {
	case errors.Is(err, domain.ErrLoadSuperseded):
		p.logger.Debug("load superseded", slog.String("path", path))
	case errors.Is(err, domain.ErrNoFileSelected):
		p.view.ShowError("Could not open file", err)
	default:
		p.logger.Error("load failed", slog.String("path", path), slog.Any("error", err))
	}
}

// OnPlayClicked handles the play/pause button click.
func (p *Presenter) OnPlayClicked() {
	if err := p.transportService.TogglePlay(); err != nil {
		p.report("play/pause failed", "Playback Error", err)
	}
}

// OnSeekRequested handles seek requests from the progress slider (0-100).
func (p *Presenter) OnSeekRequested(percent float64) {
	if err := p.transportService.Seek(percent); err != nil {
		p.report("seek failed", "Seek Error", err)
	}
}

// OnVolumeChanged handles volume slider changes (0-100).
func (p *Presenter) OnVolumeChanged(volume float64) {
	if err := p.transportService.SetVolume(volume / 100.0); err != nil {
		p.report("volume change failed", "Volume Error", err)
	}
}

// OnSensitivityChanged handles sensitivity slider changes.
func (p *Presenter) OnSensitivityChanged(sensitivity float64) {
	if err := p.transportService.SetSensitivity(sensitivity); err != nil {
		p.report("sensitivity change failed", "Sensitivity Error", err)
	}
}

// OnModeSelected handles the visual mode selector.
func (p *Presenter) OnModeSelected(mode string) {
	if err := p.transportService.SetMode(domain.Mode(mode)); err != nil {
		p.report("mode change failed", "Mode Error", err)
	}
}

// OnBassBoostToggled handles the bass boost check box.
func (p *Presenter) OnBassBoostToggled(enabled bool) {
	if err := p.transportService.SetBassBoost(enabled); err != nil {
		p.report("bass boost toggle failed", "Bass Boost Error", err)
	}
}

// OnBassGainChanged handles the bass gain slider (dB).
func (p *Presenter) OnBassGainChanged(gainDB float64) {
	if err := p.transportService.SetBassGain(gainDB); err != nil {
		p.report("bass gain change failed", "Bass Boost Error", err)
	}
}

// OnThemeSelected handles the theme selector.
func (p *Presenter) OnThemeSelected(theme string) {
	if err := p.preferenceService.SetTheme(theme); err != nil {
		p.report("theme change failed", "Theme Error", err)
		return
	}
	p.view.SetTheme(theme)
}

// OnResetSettings restores the default settings and applies them.
func (p *Presenter) OnResetSettings() {
	if err := p.preferenceService.ResetToDefaults(); err != nil {
		p.report("settings reset failed", "Settings Error", err)
		return
	}

	prefs := p.preferenceService.Preferences()
	err := errors.Join(
		p.transportService.SetVolume(prefs.Volume),
		p.transportService.SetSensitivity(prefs.Sensitivity),
		p.transportService.SetBassGain(prefs.BassGain),
		p.transportService.SetMode(prefs.Mode),
	)
	if err != nil {
		p.report("applying default settings failed", "Settings Error", err)
	}
	p.view.SetTheme(prefs.Theme)
}

func (p *Presenter) report(msg, title string, err error) {
	p.logger.Error(msg, slog.Any("error", err))
	p.view.ShowError(title, err)
}

// Shutdown cleans up resources.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		for _, id := range p.subscriptions {
			p.eventBus.Unsubscribe(id)
		}
		p.subscriptions = nil
		p.mu.Unlock()

		p.loop.Stop()
		p.loads.Wait()
	})
}
