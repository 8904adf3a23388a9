// Package app wires the configured collaborators into one nayana session.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/nayana/internal/action"
	"github.com/ayusman/nayana/internal/capture"
	"github.com/ayusman/nayana/internal/config"
	"github.com/ayusman/nayana/internal/display"
	"github.com/ayusman/nayana/internal/export"
	"github.com/ayusman/nayana/internal/gesture"
	"github.com/ayusman/nayana/internal/landmark"
	"github.com/ayusman/nayana/internal/plugin"
	"github.com/ayusman/nayana/internal/server"
	"github.com/ayusman/nayana/internal/session"
	"github.com/ayusman/nayana/internal/stats"
	"github.com/ayusman/nayana/internal/store"
	"github.com/ayusman/nayana/internal/tray"
)

// ShutdownTimeout bounds the HTTP server shutdown after the session ends.
const ShutdownTimeout = 5 * time.Second

// Deps overrides collaborators that would otherwise be built from the config.
// Every field is optional.
type Deps struct {
	Camera    capture.Camera
	Detector  landmark.Detector
	Automator action.Automator
	Display   display.Display
	Report    io.Writer
	Clock     func() time.Time
}

// App is one configured session plus its optional surfaces.
type App struct {
	cfg      *config.Config
	store    *store.Store
	detector landmark.Detector
	recorder *stats.Recorder
	loop     *session.Loop
	server   *server.Server
	sink     *export.KafkaSink
	tray     *tray.Tray

	closeOnce sync.Once
}

// New builds the session described by cfg. Resources acquired before a
// failure are released.
func New(cfg *config.Config, deps Deps) (*App, error) {
	a := &App{cfg: cfg, recorder: stats.NewRecorder()}
	if err := a.build(deps); err != nil {
		if a.loop == nil && a.detector != nil {
			a.detector.Close()
		}
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(deps Deps) error {
	cfg := a.cfg
	id := uuid.New().String()

	var err error
	var persister session.Persister
	if cfg.Store.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		if a.store, err = store.New(cfg.Store.Path); err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		persister = a.store.Sessions()
	}

	camera := deps.Camera
	if camera == nil {
		camera = capture.NewCamera(cfg.Camera)
	}

	a.detector = deps.Detector
	if a.detector == nil {
		mp, err := landmark.NewMediaPipeDetector(cfg.Landmark)
		if err != nil {
			return fmt.Errorf("landmark detector: %w", err)
		}
		a.detector = mp
	}

	automator := deps.Automator
	if automator == nil {
		if automator, err = newAutomator(cfg.Action); err != nil {
			return err
		}
	}
	dispatcher, err := action.NewDispatcher(automator, cfg.Action.ScrollDelta, nil)
	if err != nil {
		return fmt.Errorf("pointer backend: %w", err)
	}

	disp := deps.Display
	if disp == nil {
		disp = newDisplay(cfg)
	}
	var latch *display.JPEGLatch
	if cfg.Server.Enabled && cfg.Server.Stream {
		latch = display.NewJPEGLatch()
		disp = display.Multi{disp, latch}
	}

	if cfg.Tray.Enabled {
		a.tray = tray.New(true)
		a.tray.Attach(a.recorder)
	}

	opts := session.Options{
		Camera:     camera,
		Detector:   a.detector,
		Display:    disp,
		Dispatcher: dispatcher,
		Classifier: gesture.NewClassifier(cfg.Gesture),
		Recorder:   a.recorder,
		Config:     cfg.Session,
		Clock:      deps.Clock,
		Report:     deps.Report,
		SessionID:  id,
		Pointer:    cfg.Action.Backend,
		OnTerminate: func(session.Reason) {
			if a.tray != nil {
				a.tray.Quit()
			}
		},
	}
	if persister != nil {
		opts.Store = persister
	}
	if a.loop, err = session.New(opts); err != nil {
		return err
	}

	if a.tray != nil {
		a.tray.OnToggle(a.loop.SetEnabled)
	}

	if cfg.Kafka.Enabled {
		if a.sink, err = export.NewKafkaSink(cfg.Kafka, id); err != nil {
			return err
		}
		a.sink.Attach(a.recorder)
	}

	if cfg.Server.Enabled {
		hub := server.NewHub(id)
		hub.Attach(a.recorder)

		scfg := server.Config{StaticDir: cfg.Server.StaticDir, Live: a, Hub: hub}
		if a.store != nil {
			scfg.Sessions = a.store.Sessions()
		}
		if latch != nil {
			scfg.Frames = latch
		}
		a.server = server.New(scfg)
	}

	return nil
}

// newDisplay builds the preview display. The tray event loop owns the main
// thread, and OpenCV windows must not be driven from another one, so the
// tray implies a headless display.
func newDisplay(cfg *config.Config) display.Display {
	if cfg.Tray.Enabled && !cfg.Display.Headless {
		log.Warn().Msg("tray enabled: preview window disabled")
		return display.NewHeadless()
	}
	if cfg.Display.Headless {
		return display.NewHeadless()
	}
	return display.NewWindow()
}

func newAutomator(cfg config.ActionConfig) (action.Automator, error) {
	switch cfg.Backend {
	case config.BackendPlugin:
		mgr := plugin.NewManager(cfg.PluginDir)
		if err := mgr.Discover(); err != nil {
			return nil, fmt.Errorf("discover plugins: %w", err)
		}
		a, err := action.NewPluginAutomator(mgr, cfg.Plugin, plugin.NewExecutor(cfg.TimeoutMs))
		if err != nil {
			return nil, fmt.Errorf("pointer plugin %q: %w", cfg.Plugin, err)
		}
		return a, nil
	default:
		return action.NewRobotgoAutomator(), nil
	}
}

// Run starts the optional HTTP server and runs the session until it
// terminates. Surfaces are shut down before Run returns.
func (a *App) Run(ctx context.Context) (session.Reason, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.tray != nil {
		a.tray.OnQuit(cancel)
	}

	if a.server != nil {
		go func() {
			if err := a.server.ListenAndServe(a.cfg.Server.Addr); err != nil {
				log.Error().Err(err).Str("addr", a.cfg.Server.Addr).Msg("HTTP server failed")
			}
		}()
	}

	reason, err := a.loop.Run(ctx)
	a.close()
	return reason, err
}

// close releases the surfaces and the store. It is safe to call twice.
func (a *App) close() {
	a.closeOnce.Do(func() {
		if a.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
			if err := a.server.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("HTTP server shutdown failed")
			}
			cancel()
		}
		if a.sink != nil {
			if err := a.sink.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close kafka sink")
			}
		}
		if a.store != nil {
			if err := a.store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close store")
			}
		}
	})
}

// Handler returns the HTTP surface, or nil when the server is disabled.
func (a *App) Handler() http.Handler {
	if a.server == nil {
		return nil
	}
	return a.server
}

// Tray returns the tray menu, or nil when the tray is disabled.
func (a *App) Tray() *tray.Tray {
	return a.tray
}

// ID returns the session ID.
func (a *App) ID() string {
	return a.loop.ID()
}

// Recorder returns the session statistics.
func (a *App) Recorder() *stats.Recorder {
	return a.recorder
}

// Enabled reports whether gestures are being evaluated.
func (a *App) Enabled() bool {
	return a.loop.Enabled()
}

// SetEnabled pauses or resumes gestures and keeps the tray menu in sync.
func (a *App) SetEnabled(enabled bool) {
	a.loop.SetEnabled(enabled)
	if a.tray != nil {
		a.tray.SetEnabled(enabled)
	}
}
