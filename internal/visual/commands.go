// Package visual maps analysis frames into surface-independent draw commands.
//
// The mapper never clamps: colors and coordinates may fall outside the
// drawable range and are clamped or clipped by the surface.
package visual

// Kind identifies a draw command.
type Kind int

const (
	// KindClear erases the whole surface
	KindClear Kind = iota

	// KindFillRect fills the rectangle X, Y, W, H
	KindFillRect

	// KindFillCircle fills a circle of Radius centred on X, Y
	KindFillCircle

	// KindStrokePolyline strokes Points with StrokeWidth
	KindStrokePolyline
)

// String returns a human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindClear:
		return "clear"
	case KindFillRect:
		return "fillRect"
	case KindFillCircle:
		return "fillCircle"
	case KindStrokePolyline:
		return "strokePolyline"
	default:
		return "unknown"
	}
}

// Color is an unclamped RGB color with channels nominally in 0..255.
type Color struct {
	R, G, B float64
}

// Point is a surface coordinate in pixels, origin top-left.
type Point struct {
	X, Y float64
}

// DrawCommand is one primitive for a surface to draw.
type DrawCommand struct {
	Kind Kind

	X, Y, W, H float64
	Radius     float64

	Points      []Point
	StrokeWidth float64

	Color Color
}

// Fixed colors used by the mappers.
var (
	WaveColor     = Color{R: 0, G: 255, B: 0}
	OverviewColor = Color{R: 0, G: 255, B: 0}
)
