package visual

import (
	"math"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
)

const (
	circleDotRadius = 2
	waveStrokeWidth = 2
)

// Bars renders one filled bar per magnitude, growing up from the bottom edge.
// Bars run past the right edge when there are more than w/2.5 of them.
func Bars(dst []DrawCommand, m []byte, sensitivity, w, h float64) []DrawCommand {
	if len(m) == 0 {
		return dst
	}

	width := w / float64(len(m)) * 2.5
	x := 0.0
	for _, v := range m {
		height := float64(v) * sensitivity / 5
		dst = append(dst, DrawCommand{
			Kind:  KindFillRect,
			X:     x,
			Y:     h - height,
			W:     width,
			H:     height,
			Color: Color{R: height + 100, G: 50, B: 50},
		})
		x += width + 1
	}
	return dst
}

// Circles renders one dot per magnitude on a ring around the centre,
// pushed outward by the magnitude.
func Circles(dst []DrawCommand, m []byte, sensitivity, w, h float64) []DrawCommand {
	if len(m) == 0 {
		return dst
	}

	cx, cy := w/2, h/2
	radius := math.Min(cx, cy) / 2
	n := float64(len(m))
	for i, v := range m {
		angle := float64(i) / n * 2 * math.Pi
		offset := float64(v) * sensitivity / 10
		dst = append(dst, DrawCommand{
			Kind:   KindFillCircle,
			X:      cx + (radius+offset)*math.Cos(angle),
			Y:      cy + (radius+offset)*math.Sin(angle),
			Radius: circleDotRadius,
			Color:  Color{R: offset + 100, G: 50, B: 50},
		})
	}
	return dst
}

// Waves renders a single polyline across the surface. Values are
// normalized around 128 whatever their source.
func Waves(dst []DrawCommand, m []byte, sensitivity, w, h float64) []DrawCommand {
	if len(m) == 0 {
		return dst
	}

	points := make([]Point, len(m))
	slice := w / float64(len(m))
	for i, v := range m {
		points[i] = Point{
			X: float64(i) * slice,
			Y: float64(v) / 128 * sensitivity / 5 * h / 2,
		}
	}
	return append(dst, DrawCommand{
		Kind:        KindStrokePolyline,
		Points:      points,
		StrokeWidth: waveStrokeWidth,
		Color:       WaveColor,
	})
}

// BassOverlay clears the surface and renders bars over the bass sub-band.
func BassOverlay(dst []DrawCommand, b []byte, sensitivity, w, h float64) []DrawCommand {
	if len(b) == 0 {
		return dst
	}

	dst = append(dst, DrawCommand{Kind: KindClear})

	width := w / float64(len(b)) * 2.5
	x := 0.0
	for _, v := range b {
		height := float64(v) * sensitivity / 10
		dst = append(dst, DrawCommand{
			Kind:  KindFillRect,
			X:     x,
			Y:     h - height,
			W:     width,
			H:     height,
			Color: Color{R: 50, G: 50, B: height + 100},
		})
		x += width + 1
	}
	return dst
}

// Mapper turns analysis frames into draw commands, reusing its buffer
// between frames. A Mapper must not be shared between goroutines.
type Mapper struct {
	cmds []DrawCommand
}

// NewMapper creates a Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map returns the commands for frame under params on a w x h surface.
// The returned slice is overwritten by the next call.
func (m *Mapper) Map(frame domain.AnalysisFrame, params domain.VisualParameters, w, h float64) []DrawCommand {
	cmds := m.cmds[:0]

	s := params.Sensitivity
	switch params.Mode {
	case domain.ModeCircles:
		cmds = Circles(cmds, frame.Magnitudes, s, w, h)
	case domain.ModeWaves:
		cmds = Waves(cmds, frame.Magnitudes, s, w, h)
	default:
		cmds = Bars(cmds, frame.Magnitudes, s, w, h)
	}

	if params.BassOverlayEnabled {
		cmds = BassOverlay(cmds, frame.BassMagnitudes, s, w, h)
	}

	m.cmds = cmds
	return cmds
}
