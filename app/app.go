package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/frame-annotator/config"
	"github.com/soocke/frame-annotator/debug"
	"github.com/soocke/frame-annotator/ui/theme"
)

const debugInterval = 5 * time.Second

type app struct {
	config  *config.Config
	logger  *slog.Logger
	title   string
	tick    time.Duration
	afterID string
	closed  bool

	c *AppContainer

	// stops the debug monitors
	cancel context.CancelFunc
}

// NewApp prepares the main window. Widgets are built in Start.
func NewApp(title string, cfg *config.Config, logger *slog.Logger) (*app, error) {
	enableDPIAwareness()
	theme.SetDark(cfg.DarkMode)
	c, err := BuildContainer(cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &app{config: cfg, logger: logger, title: title, tick: cfg.Tick(), c: c}
	App.WmTitle(title)
	w, h := c.RootView.WindowSize()
	sw, sh := screenSize()
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, centeredGeometry(w, h, sw, sh))
	return a, nil
}

// Start builds the UI, starts the update loop and blocks in the Tk event
// loop until the window is closed.
func (a *app) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if a.config.Debug {
		debug.StartGoroutineLogger(ctx, debugInterval, a.logger)
		debug.StartProcessMonitor(ctx, debugInterval, a.logger)
	}

	a.c.RootView.Build(a.c.Handlers(a.exitHandler))
	a.c.Navigation.Init(a.config.Videos)
	a.c.Loop.Schedule = a.scheduleUpdate
	a.logger.Info("annotator started", "backend", a.config.BackendURL, "videos", len(a.config.Videos))

	a.scheduleUpdate()
	App.Wait()
	a.shutdown()
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.shutdown()
	Destroy(App)
}

func (a *app) shutdown() {
	a.c.Requests.Close()
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// Schedule the next tick using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(a.tick, a.c.Loop.Tick)
}

// centeredGeometry returns a Tk geometry string for a w x h window centered
// on a screen of sw x sh. An unknown or too small screen gets a fixed offset.
func centeredGeometry(w, h, sw, sh int) string {
	if sw <= w || sh <= h {
		return fmt.Sprintf("%dx%d+100+100", w, h)
	}
	return fmt.Sprintf("%dx%d+%d+%d", w, h, (sw-w)/2, (sh-h)/2)
}
