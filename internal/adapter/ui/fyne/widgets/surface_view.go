// Package widgets provides custom Fyne widgets for the audio visualiser.
package widgets

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// SurfaceView shows the frames produced by the render loop.
// Present may be called from any goroutine.
type SurfaceView struct {
	widget.BaseWidget

	image  *canvas.Image
	mu     sync.Mutex
	frame  *image.RGBA
	frames uint64
}

// NewSurfaceView creates an empty surface view.
func NewSurfaceView() *SurfaceView {
	v := &SurfaceView{}

	v.image = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	v.image.FillMode = canvas.ImageFillContain
	v.image.ScaleMode = canvas.ImageScalePixels
	v.ExtendBaseWidget(v)

	return v
}

// CreateRenderer implements fyne.Widget.
func (v *SurfaceView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.image)
}

// MinSize returns a minimal size so the widget expands to fill available space.
func (v *SurfaceView) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// Present hands a finished frame to the widget and schedules a redraw.
func (v *SurfaceView) Present(frame *image.RGBA) {
	v.mu.Lock()
	v.frame = frame
	v.frames++
	v.mu.Unlock()

	fyne.Do(func() {
		v.mu.Lock()
		latest := v.frame
		v.mu.Unlock()
		if latest == nil {
			return
		}
		v.image.Image = latest
		v.image.Refresh()
	})
}

// Frame returns the last presented frame, or nil.
func (v *SurfaceView) Frame() *image.RGBA {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

// Presented returns how many frames were presented.
func (v *SurfaceView) Presented() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}
