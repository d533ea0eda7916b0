// Package memory provides repositories backed by Fyne preferences.
package memory

import (
	"sync"

	"fyne.io/fyne/v2"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

// Preference keys.
const (
	keyVolume      = "preferences.volume"
	keySensitivity = "preferences.sensitivity"
	keyBassGain    = "preferences.bass_gain"
	keyMode        = "preferences.mode"
	keyTheme       = "preferences.theme"
)

// DefaultTheme is the theme used before the user picks one.
const DefaultTheme = "dark"

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
// This provides a thin wrapper around Fyne's preferences system with proper error handling.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences' repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// SaveVolume persists the volume level.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(keyVolume, volume)
	return nil
}

// LoadVolume retrieves the saved volume level.
func (r *PreferencesRepository) LoadVolume() (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.FloatWithFallback(keyVolume, domain.DefaultVolume), nil
}

// SaveSensitivity persists the sensitivity multiplier.
func (r *PreferencesRepository) SaveSensitivity(sensitivity float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(keySensitivity, sensitivity)
	return nil
}

// LoadSensitivity retrieves the saved sensitivity multiplier.
func (r *PreferencesRepository) LoadSensitivity() (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.FloatWithFallback(keySensitivity, domain.DefaultSensitivity), nil
}

// SaveBassGain persists the bass boost gain in dB.
func (r *PreferencesRepository) SaveBassGain(gainDB float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(keyBassGain, gainDB)
	return nil
}

// LoadBassGain retrieves the saved bass boost gain.
func (r *PreferencesRepository) LoadBassGain() (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.FloatWithFallback(keyBassGain, domain.DefaultBassGain), nil
}

// SaveMode persists the visual mode.
func (r *PreferencesRepository) SaveMode(mode domain.Mode) error {
	if !mode.Valid() {
		return domain.NewValidationError("mode", mode, domain.ErrUnknownMode)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyMode, string(mode))
	return nil
}

// LoadMode retrieves the saved visual mode.
// A corrupt stored value yields the default mode alongside the error.
func (r *PreferencesRepository) LoadMode() (domain.Mode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mode := domain.Mode(r.prefs.StringWithFallback(keyMode, string(domain.ModeBars)))
	if !mode.Valid() {
		return domain.ModeBars, domain.NewServiceError("PreferencesRepository", "LoadMode", "stored mode is invalid", domain.ErrUnknownMode)
	}
	return mode, nil
}

// SaveTheme persists the theme preference.
func (r *PreferencesRepository) SaveTheme(theme string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyTheme, theme)
	return nil
}

// LoadTheme retrieves the saved theme preference.
func (r *PreferencesRepository) LoadTheme() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.StringWithFallback(keyTheme, DefaultTheme), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range []string{keyVolume, keySensitivity, keyBassGain, keyMode, keyTheme} {
		r.prefs.RemoveValue(key)
	}
	return nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
