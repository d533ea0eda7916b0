package fyne

import (
	"image/color"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/service"
)

// variantTheme forces the default theme into a single variant.
type variantTheme struct {
	fyneapp.Theme
	variant fyneapp.ThemeVariant
}

// newVariantTheme returns the default theme pinned to the named variant.
// Unknown names fall back to dark.
func newVariantTheme(name string) *variantTheme {
	variant := theme.VariantDark
	if name == service.ThemeLight {
		variant = theme.VariantLight
	}
	return &variantTheme{Theme: theme.DefaultTheme(), variant: variant}
}

// Color implements fyne.Theme.
func (t *variantTheme) Color(name fyneapp.ThemeColorName, _ fyneapp.ThemeVariant) color.Color {
	return t.Theme.Color(name, t.variant)
}
