// Package render drives the per-frame pipeline: sample the analysers, map
// the frame to draw commands and rasterize them onto a surface.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/vector"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/visual"
)

const circleSegments = 24

// Gradient is a vertical two-stop background.
type Gradient struct {
	Top, Bottom color.RGBA
}

// DefaultGradient is the background painted under every frame.
var DefaultGradient = Gradient{
	Top:    color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff},
	Bottom: color.RGBA{R: 0x16, G: 0x21, B: 0x3e, A: 0xff},
}

// RasterSurface is an RGBA canvas that executes draw commands.
// Colors are clamped to 0..255 and geometry is clipped to the bounds.
//
// Thread-safety: This implementation is thread-safe.
type RasterSurface struct {
	mu       sync.Mutex
	img      *image.RGBA
	z        vector.Rasterizer
	gradient Gradient
}

// NewRasterSurface creates a w x h surface.
func NewRasterSurface(w, h int, gradient Gradient) *RasterSurface {
	s := &RasterSurface{gradient: gradient}
	s.Resize(w, h)
	return s
}

// Resize replaces the canvas with a cleared w x h one.
func (s *RasterSurface) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
}

// Size returns the canvas dimensions.
func (s *RasterSurface) Size() (w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear erases the canvas to transparent.
func (s *RasterSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.img.Pix)
}

// PaintGradient fills the canvas with the background gradient.
func (s *RasterSurface) PaintGradient() {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.img.Bounds()
	h := b.Dy()
	for y := range h {
		t := 0.0
		if h > 1 {
			t = float64(y) / float64(h-1)
		}
		c := lerp(s.gradient.Top, s.gradient.Bottom, t)
		draw.Draw(s.img, image.Rect(b.Min.X, y, b.Max.X, y+1), image.NewUniform(c), image.Point{}, draw.Src)
	}
}

// Draw executes cmds in order.
func (s *RasterSurface) Draw(cmds []visual.DrawCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range cmds {
		s.drawLocked(&cmds[i])
	}
}

// Snapshot returns a copy of the canvas.
func (s *RasterSurface) Snapshot() *image.RGBA {
	return s.CopyTo(nil)
}

// CopyTo copies the canvas into dst and returns it. dst is reused when its
// bounds match the canvas; otherwise a new image is allocated.
func (s *RasterSurface) CopyTo(dst *image.RGBA) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dst == nil || dst.Bounds() != s.img.Bounds() {
		dst = image.NewRGBA(s.img.Bounds())
	}
	copy(dst.Pix, s.img.Pix)
	return dst
}

func (s *RasterSurface) drawLocked(c *visual.DrawCommand) {
	bounds := s.img.Bounds()
	if bounds.Empty() {
		return
	}
	src := image.NewUniform(ClampColor(c.Color))

	switch c.Kind {
	case visual.KindClear:
		clear(s.img.Pix)

	case visual.KindFillRect:
		r := image.Rect(
			int(math.Floor(c.X)), int(math.Floor(c.Y)),
			int(math.Ceil(c.X+c.W)), int(math.Ceil(c.Y+c.H)),
		).Intersect(bounds)
		if !r.Empty() {
			draw.Draw(s.img, r, src, image.Point{}, draw.Over)
		}

	case visual.KindFillCircle:
		box := image.Rect(
			int(math.Floor(c.X-c.Radius)), int(math.Floor(c.Y-c.Radius)),
			int(math.Ceil(c.X+c.Radius)), int(math.Ceil(c.Y+c.Radius)),
		)
		if !box.Overlaps(bounds) {
			return
		}
		s.z.Reset(bounds.Dx(), bounds.Dy())
		for i := range circleSegments {
			a := 2 * math.Pi * float64(i) / circleSegments
			x, y := float32(c.X+c.Radius*math.Cos(a)), float32(c.Y+c.Radius*math.Sin(a))
			if i == 0 {
				s.z.MoveTo(x, y)
			} else {
				s.z.LineTo(x, y)
			}
		}
		s.z.ClosePath()
		s.z.Draw(s.img, bounds, src, image.Point{})

	case visual.KindStrokePolyline:
		if len(c.Points) < 2 {
			return
		}
		s.z.Reset(bounds.Dx(), bounds.Dy())
		half := max(c.StrokeWidth, 1) / 2
		for i := 1; i < len(c.Points); i++ {
			s.segmentLocked(c.Points[i-1], c.Points[i], half)
		}
		s.z.Draw(s.img, bounds, src, image.Point{})
	}
}

// segmentLocked adds a quad of half-width half around the segment a-b.
func (s *RasterSurface) segmentLocked(a, b visual.Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	px, py := -dy/length*half, dx/length*half

	s.z.MoveTo(float32(a.X+px), float32(a.Y+py))
	s.z.LineTo(float32(b.X+px), float32(b.Y+py))
	s.z.LineTo(float32(b.X-px), float32(b.Y-py))
	s.z.LineTo(float32(a.X-px), float32(a.Y-py))
	s.z.ClosePath()
}

// ClampColor converts an unclamped mapper color to an opaque RGBA.
func ClampColor(c visual.Color) color.RGBA {
	return color.RGBA{R: clampChannel(c.R), G: clampChannel(c.G), B: clampChannel(c.B), A: 0xff}
}

func clampChannel(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
