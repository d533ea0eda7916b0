package widgets

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/render"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/visual"
)

// overviewBackground is the flat background of the overview strip.
var overviewBackground = render.Gradient{
	Top:    color.RGBA{R: 0x10, G: 0x10, B: 0x1c, A: 0xff},
	Bottom: color.RGBA{R: 0x10, G: 0x10, B: 0x1c, A: 0xff},
}

// OverviewView draws the whole waveform of the loaded asset once.
// The image is only regenerated when the asset or the widget size changes.
type OverviewView struct {
	widget.BaseWidget

	raster *canvas.Raster
	height float32

	mu      sync.Mutex
	asset   *domain.AudioAsset
	surface *render.RasterSurface
	cached  *image.RGBA
}

// NewOverviewView creates an overview strip of the given height.
func NewOverviewView(height float32) *OverviewView {
	v := &OverviewView{height: height}

	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)

	return v
}

// CreateRenderer implements fyne.Widget.
func (v *OverviewView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize keeps the strip at its configured height.
func (v *OverviewView) MinSize() fyne.Size {
	return fyne.NewSize(0, v.height)
}

// SetAsset replaces the displayed asset. A nil asset clears the strip.
func (v *OverviewView) SetAsset(asset *domain.AudioAsset) {
	v.mu.Lock()
	v.asset = asset
	v.cached = nil
	v.mu.Unlock()

	fyne.Do(v.raster.Refresh)
}

// Asset returns the displayed asset.
func (v *OverviewView) Asset() *domain.AudioAsset {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.asset
}

// draw is the raster generator function.
func (v *OverviewView) draw(w, h int) image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cached != nil && v.cached.Bounds().Dx() == w && v.cached.Bounds().Dy() == h {
		return v.cached
	}
	if v.surface == nil {
		v.surface = render.NewRasterSurface(w, h, overviewBackground)
	} else {
		v.surface.Resize(w, h)
	}

	v.surface.PaintGradient()
	if v.asset != nil {
		cmds := visual.Overview(v.asset, w, h)
		// Overview starts with a clear; keep the background instead.
		if len(cmds) > 0 && cmds[0].Kind == visual.KindClear {
			cmds = cmds[1:]
		}
		v.surface.Draw(cmds)
	}

	v.cached = v.surface.Snapshot()
	return v.cached
}
