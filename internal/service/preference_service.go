package service

import (
	"log/slog"
	"sync"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

// Themes offered by the UI.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// PreferenceService manages application preferences and settings.
// It persists volume and visual parameter changes as they are published on
// the event bus, so the transport never talks to the repository.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository
	bus        ports.EventBus

	// Cached preferences
	prefs domain.Preferences
	subs  []domain.SubscriptionID

	// Concurrency control
	mu sync.RWMutex
}

// NewPreferenceService creates a new preference service and loads the saved preferences.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
	bus ports.EventBus,
) *PreferenceService {
	service := &PreferenceService{
		logger:     logger,
		repository: repository,
		bus:        bus,
		prefs:      defaultPreferences(),
	}

	service.loadPreferences()

	service.subs = append(service.subs,
		bus.Subscribe(domain.EventVolumeChanged, service.onVolumeChanged),
		bus.Subscribe(domain.EventParametersChanged, service.onParametersChanged),
	)

	logger.Debug("preference service initialized")
	return service
}

func defaultPreferences() domain.Preferences {
	return domain.Preferences{
		Volume:      domain.DefaultVolume,
		Sensitivity: domain.DefaultSensitivity,
		BassGain:    domain.DefaultBassGain,
		Mode:        domain.ModeBars,
		Theme:       ThemeDark,
	}
}

// loadPreferences loads all preferences from repository into cache.
// Values that fail to load keep their defaults.
func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vol, err := s.repository.LoadVolume(); err == nil {
		s.prefs.Volume = vol
	}
	if sensitivity, err := s.repository.LoadSensitivity(); err == nil {
		s.prefs.Sensitivity = sensitivity
	}
	if gain, err := s.repository.LoadBassGain(); err == nil {
		s.prefs.BassGain = gain
	}
	if mode, err := s.repository.LoadMode(); err == nil {
		s.prefs.Mode = mode
	} else {
		s.logger.Warn("ignoring saved mode", slog.Any("error", err))
	}
	if theme, err := s.repository.LoadTheme(); err == nil && validTheme(theme) {
		s.prefs.Theme = theme
	}
}

// Preferences returns a snapshot of the cached preferences.
func (s *PreferenceService) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// GetTheme returns the saved theme preference.
func (s *PreferenceService) GetTheme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Theme
}

// SetTheme saves the theme preference.
func (s *PreferenceService) SetTheme(theme string) error {
	if !validTheme(theme) {
		return domain.NewValidationError("theme", theme, domain.ErrInvalidTheme)
	}

	s.mu.Lock()
	s.prefs.Theme = theme
	s.mu.Unlock()

	return s.repository.SaveTheme(theme)
}

func (s *PreferenceService) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	s.prefs.Volume = e.Volume
	s.mu.Unlock()

	if err := s.repository.SaveVolume(e.Volume); err != nil {
		s.logger.Warn("failed to save volume", slog.Any("error", err))
	}
}

func (s *PreferenceService) onParametersChanged(event domain.Event) {
	e, ok := event.(domain.ParametersChangedEvent)
	if !ok {
		return
	}
	p := e.Parameters

	s.mu.Lock()
	s.prefs.Sensitivity = p.Sensitivity
	s.prefs.BassGain = p.BassGain
	s.prefs.Mode = p.Mode
	s.mu.Unlock()

	if err := s.repository.SaveSensitivity(p.Sensitivity); err != nil {
		s.logger.Warn("failed to save sensitivity", slog.Any("error", err))
	}
	if err := s.repository.SaveBassGain(p.BassGain); err != nil {
		s.logger.Warn("failed to save bass gain", slog.Any("error", err))
	}
	if err := s.repository.SaveMode(p.Mode); err != nil {
		s.logger.Warn("failed to save mode", slog.Any("error", err))
	}
}

// ResetToDefaults resets all preferences to default values.
func (s *PreferenceService) ResetToDefaults() error {
	s.mu.Lock()
	s.prefs = defaultPreferences()
	s.mu.Unlock()

	return s.repository.Clear()
}

// Shutdown stops listening for changes.
func (s *PreferenceService) Shutdown() error {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}
	return nil
}

func validTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark
}

// Verify that PreferenceService implements the expected interface patterns
var _ interface {
	Preferences() domain.Preferences
	GetTheme() string
	SetTheme(string) error
	ResetToDefaults() error
	Shutdown() error
} = (*PreferenceService)(nil)
