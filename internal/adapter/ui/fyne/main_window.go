package fyne

import (
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/ui/fyne/widgets"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/service"
	"github.com/CoderFleet/AudioVisualiserHackClub/res"
)

// Window defaults.
const (
	WIDTH          = 1000
	HEIGHT         = 720
	overviewHeight = 64
)

// MainWindow is the main UI window implementing the UIView interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// UIView methods may be called from any goroutine; they hop onto the Fyne
// goroutine with fyne.Do.
type MainWindow struct {
	app     fyneapp.App
	window  fyneapp.Window
	appName string

	// UI components
	openButton        *widget.Button
	playButton        *widget.Button
	titleLabel        *widget.Label
	currentTime       *widget.Label
	endTime           *widget.Label
	seekSlider        *widget.Slider
	volumeSlider      *widget.Slider
	sensitivitySlider *widget.Slider
	bassGainSlider    *widget.Slider
	bassCheck         *widget.Check
	modeSelect        *widget.Select
	themeSelect       *widget.Select
	surface           *widgets.SurfaceView
	overview          *widgets.OverviewView

	// syncing is set while the view mirrors service state into its
	// controls, so control callbacks do not echo back to the presenter.
	// Only touched on the Fyne goroutine.
	syncing bool

	// Lifecycle management
	closeOnce     sync.Once
	onBeforeClose func()

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window.
func NewMainWindow(app fyneapp.App, appName string) *MainWindow {
	w := &MainWindow{
		app:     app,
		appName: appName,
	}

	w.window = app.NewWindow(appName)
	w.buildUI()

	w.window.Resize(fyneapp.Size{
		Width:  WIDTH,
		Height: HEIGHT,
	})
	w.window.SetCloseIntercept(func() {
		if w.onBeforeClose != nil {
			w.onBeforeClose()
		}
		w.window.Close()
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// SetOnBeforeClose registers fn to run before the window closes.
func (w *MainWindow) SetOnBeforeClose(fn func()) {
	w.onBeforeClose = fn
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	w.surface = widgets.NewSurfaceView()
	w.overview = widgets.NewOverviewView(overviewHeight)

	w.openButton = widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)

	w.titleLabel = widget.NewLabel("No file loaded")
	w.titleLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.titleLabel.TextStyle = fyneapp.TextStyle{Bold: true}

	modes := make([]string, 0, len(domain.Modes()))
	for _, m := range domain.Modes() {
		modes = append(modes, string(m))
	}
	w.modeSelect = widget.NewSelect(modes, nil)
	w.themeSelect = widget.NewSelect([]string{service.ThemeLight, service.ThemeDark}, nil)

	w.volumeSlider = widget.NewSlider(0, 100)
	w.sensitivitySlider = widget.NewSlider(domain.MinSensitivity, domain.MaxSensitivity)
	w.sensitivitySlider.Step = 0.5
	w.bassGainSlider = widget.NewSlider(domain.MinBassGain, domain.MaxBassGain)
	w.bassCheck = widget.NewCheck("Bass boost", nil)

	w.seekSlider = widget.NewSlider(0, 100)
	w.seekSlider.Step = 0.1
	w.currentTime = widget.NewLabel("00:00")
	w.endTime = widget.NewLabel("00:00")
	seekHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.seekSlider)

	transport := container.NewBorder(nil, nil,
		container.NewHBox(w.openButton, w.playButton), nil, w.titleLabel)

	// Label/control pairs, two per row.
	settings := container.New(layout.NewGridLayout(4),
		widget.NewLabel("Mode"), w.modeSelect,
		widget.NewLabel("Theme"), w.themeSelect,
		widget.NewLabel("Volume"), w.volumeSlider,
		widget.NewLabel("Sensitivity"), w.sensitivitySlider,
		w.bassCheck, w.bassGainSlider,
	)

	controls := container.NewVBox(transport, seekHolder, w.overview, settings)
	w.window.SetContent(container.NewPadded(container.NewBorder(nil, controls, nil, nil, w.surface)))

	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.openButton.OnTapped = w.handleOpenFile
	w.playButton.OnTapped = func() {
		w.presenter.OnPlayClicked()
	}

	w.seekSlider.OnChangeEnded = func(value float64) {
		if !w.syncing {
			w.presenter.OnSeekRequested(value)
		}
	}
	w.volumeSlider.OnChanged = func(value float64) {
		if !w.syncing {
			w.presenter.OnVolumeChanged(value)
		}
	}
	w.sensitivitySlider.OnChanged = func(value float64) {
		if !w.syncing {
			w.presenter.OnSensitivityChanged(value)
		}
	}
	w.bassGainSlider.OnChangeEnded = func(value float64) {
		if !w.syncing {
			w.presenter.OnBassGainChanged(value)
		}
	}
	w.bassCheck.OnChanged = func(checked bool) {
		if !w.syncing {
			w.presenter.OnBassBoostToggled(checked)
		}
	}
	w.modeSelect.OnChanged = func(mode string) {
		if !w.syncing {
			w.presenter.OnModeSelected(mode)
		}
	}
	w.themeSelect.OnChanged = func(theme string) {
		if !w.syncing {
			w.presenter.OnThemeSelected(theme)
		}
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	openFile := fyneapp.NewMenuItem("Open", w.handleOpenFile)
	resetSettings := fyneapp.NewMenuItem("Reset settings", func() {
		dialog.ShowConfirm("Reset settings", "Restore the default settings?", func(ok bool) {
			if ok && w.presenter != nil {
				w.presenter.OnResetSettings()
			}
		}, w.window)
	})
	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.Close()
	})

	about := fyneapp.NewMenuItem("About", func() {
		content := widget.NewRichTextFromMarkdown(res.AboutContent)
		content.Wrapping = fyneapp.TextWrapWord
		dialog.ShowCustom("About "+w.appName, "Close", content, w.window)
	})

	return []*fyneapp.Menu{
		fyneapp.NewMenu("File", openFile, resetSettings, fyneapp.NewMenuItemSeparator(), exitMenu),
		fyneapp.NewMenu("Help", about),
	}
}

// handleOpenFile handles the "Open" action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	NewFileDialog(w.window, w.presenter.OnFileOpened, w.presenter.logger).Show()
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	w.window.Canvas().SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		if ev.Name == fyneapp.KeySpace {
			w.presenter.OnPlayClicked()
		}
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyUp,
		Modifier: desktop.AltModifier,
	}, func(shortcut fyneapp.Shortcut) {
		w.volumeSlider.SetValue(min(w.volumeSlider.Value+5, 100))
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyDown,
		Modifier: desktop.AltModifier,
	}, func(shortcut fyneapp.Shortcut) {
		w.volumeSlider.SetValue(max(w.volumeSlider.Value-5, 0))
	})
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// Surface returns the widget frames are presented to.
func (w *MainWindow) Surface() *widgets.SurfaceView {
	return w.surface
}

// ViewportSize reports the size of the window content the surface is sized against.
func (w *MainWindow) ViewportSize() (width, height float32) {
	size := w.window.Canvas().Size()
	if size.Width <= 0 || size.Height <= 0 {
		return WIDTH, HEIGHT
	}
	return size.Width, size.Height
}

// UIView interface implementation

// SetPlayState updates the play/pause button icon.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		if playing {
			w.playButton.SetIcon(theme.MediaPauseIcon())
		} else {
			w.playButton.SetIcon(theme.MediaPlayIcon())
		}
	})
}

// SetTitle shows the title of the loaded asset, also as the window title.
func (w *MainWindow) SetTitle(title string) {
	fyneapp.Do(func() {
		w.titleLabel.SetText(title)
		w.window.SetTitle(title + " - " + w.appName)
	})
}

// SetTime updates the time labels.
func (w *MainWindow) SetTime(current, duration string) {
	fyneapp.Do(func() {
		if w.currentTime.Text != current {
			w.currentTime.SetText(current)
		}
		if w.endTime.Text != duration {
			w.endTime.SetText(duration)
		}
	})
}

// SetSeekPercent moves the seek slider without issuing a seek.
func (w *MainWindow) SetSeekPercent(percent float64) {
	fyneapp.Do(func() {
		w.seekSlider.Value = percent
		w.seekSlider.Refresh()
	})
}

// SetVolume updates the volume slider (0.0-1.0).
func (w *MainWindow) SetVolume(volume float64) {
	fyneapp.Do(func() {
		w.volumeSlider.Value = volume * 100.0
		w.volumeSlider.Refresh()
	})
}

// SetParameters mirrors the visual parameters into the controls.
func (w *MainWindow) SetParameters(params domain.VisualParameters) {
	fyneapp.Do(func() {
		w.syncing = true
		defer func() { w.syncing = false }()

		w.sensitivitySlider.Value = params.Sensitivity
		w.sensitivitySlider.Refresh()
		w.bassGainSlider.Value = params.BassGain
		w.bassGainSlider.Refresh()
		if w.bassCheck.Checked != params.BassOverlayEnabled {
			w.bassCheck.SetChecked(params.BassOverlayEnabled)
		}
		if w.modeSelect.Selected != string(params.Mode) {
			w.modeSelect.SetSelected(string(params.Mode))
		}
	})
}

// SetTheme applies the named theme variant.
func (w *MainWindow) SetTheme(name string) {
	fyneapp.Do(func() {
		w.syncing = true
		defer func() { w.syncing = false }()

		w.app.Settings().SetTheme(newVariantTheme(name))
		if w.themeSelect.Selected != name {
			w.themeSelect.SetSelected(name)
		}
	})
}

// SetOverview shows the waveform overview of asset.
func (w *MainWindow) SetOverview(asset *domain.AudioAsset) {
	w.overview.SetAsset(asset)
}

// ShowError displays err in a dialog.
func (w *MainWindow) ShowError(title string, err error) {
	fyneapp.Do(func() {
		dialog.ShowInformation(title, err.Error(), w.window)
	})
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
