// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/audio/mock"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/audio/pcm"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/eventbus"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/metadata"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/repository/memory"
	fyneui "github.com/CoderFleet/AudioVisualiserHackClub/internal/adapter/ui/fyne"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/audio"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/logger"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/render"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus ports.EventBus
	output   ports.AudioOutput
	source   *audio.SourceAdapter

	// Repositories
	preferencesRepo ports.PreferencesRepository

	// Services
	transportService  *service.TransportService
	preferenceService *service.PreferenceService

	// Rendering and UI
	renderLoop *render.Loop
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
	shutdownErr  error
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// SampleRate is the output sample rate; assets at other rates are resampled
	SampleRate int

	// OutputBuffer is the speaker buffer length
	OutputBuffer time.Duration

	// UseMockAudio replaces the speaker with an in-memory output (for testing)
	UseMockAudio bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// LogOutput receives log records (nil for stderr)
	LogOutput io.Writer

	// FrameRate is the render loop rate in frames per second
	FrameRate int

	// FFTSize and BassFFTSize size the main and bass analysers
	FFTSize     int
	BassFFTSize int

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	audioCfg := audio.DefaultConfig()
	return Config{
		AppID:        "club.hack.audiovisualiser",
		AppName:      "Audio Visualiser",
		SampleRate:   44100,
		OutputBuffer: 100 * time.Millisecond,
		UseMockAudio: false,
		LogLevel:     loggerCfg.Level,
		FrameRate:    render.DefaultConfig().FrameRate,
		FFTSize:      audioCfg.FFTSize,
		BassFFTSize:  audioCfg.BassFFTSize,
	}
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	app := &Application{}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 1.5: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: "text",
		Output: config.LogOutput,
	})
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("app_name", config.AppName),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Create an event bus
	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus
	if config.LogLevel <= slog.LevelDebug {
		syncBus.SubscribeAll(debugEventLogger(app.logger.With(slog.String("component", "events"))))
	}

	// Step 3: Create the audio output and the signal source
	if config.UseMockAudio {
		output := mock.NewOutput(config.SampleRate)
		output.SetLogger(app.logger.With(slog.String("output", "mock")))
		app.output = output
	} else {
		output, err := pcm.NewOutput(config.SampleRate, config.OutputBuffer,
			app.logger.With(slog.String("output", "speaker")))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize audio output: %w", err)
		}
		app.output = output
	}

	audioCfg := audio.DefaultConfig()
	if config.FFTSize > 0 {
		audioCfg.FFTSize = config.FFTSize
	}
	if config.BassFFTSize > 0 {
		audioCfg.BassFFTSize = config.BassFFTSize
	}
	app.source = audio.NewSourceAdapter(app.output, audioCfg,
		app.logger.With(slog.String("component", "source")))

	// Step 4: Create repositories
	app.preferencesRepo = memory.NewPreferencesRepository(app.fyneApp.Preferences())

	// Step 5: Create services (with dependency injection)
	app.preferenceService = service.NewPreferenceService(
		app.logger.With(slog.String("service", "preference")),
		app.preferencesRepo,
		app.eventBus,
	)

	app.transportService = service.NewTransportService(
		app.logger.With(slog.String("service", "transport")),
		app.source,
		pcm.NewDecoder(app.logger.With(slog.String("component", "decoder"))),
		metadata.NewTagReader(app.logger.With(slog.String("component", "metadata"))),
		app.eventBus,
	)

	// Step 6: Restore saved settings
	app.transportService.Restore(app.preferenceService.Preferences())

	// Step 7: Create UI and the render loop presenting into it
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, config.AppName)

	renderCfg := render.DefaultConfig()
	if config.FrameRate > 0 {
		renderCfg.FrameRate = config.FrameRate
	}
	app.renderLoop = render.NewLoop(
		renderCfg,
		app.source,
		app.transportService,
		app.mainWindow,
		app.mainWindow.Surface(),
		app.logger.With(slog.String("component", "render")),
	)
	app.renderLoop.AddFrameHook(app.transportService.PublishProgress)

	// Step 8: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.transportService,
		app.preferenceService,
		app.renderLoop,
		app.eventBus,
		app.mainWindow,
	)
	app.mainWindow.SetPresenter(app.presenter)

	// Release audio before the window goes away, whichever way it is closed.
	app.mainWindow.SetOnBeforeClose(func() {
		if err := app.Shutdown(); err != nil {
			app.logger.Warn("shutdown on close failed", slog.Any("error", err))
		}
	})

	return app, nil
}

// debugEventLogger traces every event except per-frame progress.
func debugEventLogger(log *slog.Logger) domain.EventHandler {
	return func(event domain.Event) {
		if event.Type() == domain.EventTimeProgress {
			return
		}
		log.Debug("event", slog.String("type", string(event.Type())))
	}
}

// Run starts the application.
// This is called from main.go after the application is created.
func (a *Application) Run() error {
	a.logger.Info("audio visualiser started")

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
	return nil
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		var errs []error

		// Stop drawing before the graph goes away
		a.renderLoop.Stop()

		// Discards in-flight loads and closes the audio output
		if err := a.transportService.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("transport service: %w", err))
		}

		a.presenter.Shutdown()

		if err := a.preferenceService.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("preference service: %w", err))
		}

		if err := a.eventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}

		a.shutdownErr = errors.Join(errs...)
		a.logger.Info("application shutdown complete")
	})
	return a.shutdownErr
}

// GetServices returns the application services (for testing).
func (a *Application) GetServices() (*service.TransportService, *service.PreferenceService) {
	return a.transportService, a.preferenceService
}

// GetEventBus returns the event bus (for testing).
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application (for testing).
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// GetRenderLoop returns the render loop (for testing).
func (a *Application) GetRenderLoop() *render.Loop {
	return a.renderLoop
}

// GetMainWindow returns the main window (for testing).
func (a *Application) GetMainWindow() *fyneui.MainWindow {
	return a.mainWindow
}
