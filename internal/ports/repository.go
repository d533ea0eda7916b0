// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import "github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"

// PreferencesRepository handles the persistence of user settings.
// Visualizations themselves are never persisted.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveVolume persists the volume level (0.0 to 1.0).
	SaveVolume(volume float64) error

	// LoadVolume retrieves the saved volume level.
	LoadVolume() (float64, error)

	// SaveSensitivity persists the sensitivity multiplier.
	SaveSensitivity(sensitivity float64) error

	// LoadSensitivity retrieves the saved sensitivity multiplier.
	LoadSensitivity() (float64, error)

	// SaveBassGain persists the bass boost gain in dB.
	SaveBassGain(gainDB float64) error

	// LoadBassGain retrieves the saved bass boost gain.
	LoadBassGain() (float64, error)

	// SaveMode persists the visual mode.
	SaveMode(mode domain.Mode) error

	// LoadMode retrieves the saved visual mode.
	LoadMode() (domain.Mode, error)

	// SaveTheme persists the theme name.
	SaveTheme(theme string) error

	// LoadTheme retrieves the saved theme name.
	LoadTheme() (string, error)

	// Clear removes all saved preferences.
	Clear() error
}
