package app

import (
	"fmt"
	"log/slog"

	"github.com/soocke/frame-annotator/backend"
	"github.com/soocke/frame-annotator/config"
	"github.com/soocke/frame-annotator/domain/viewport"
	"github.com/soocke/frame-annotator/ui/model"
	"github.com/soocke/frame-annotator/ui/presenter"
	"github.com/soocke/frame-annotator/ui/theme"
	"github.com/soocke/frame-annotator/ui/view"
)

// AppContainer assembles the backend client, the session model, the
// presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	Client   *backend.Client
	Frames   *backend.Frames
	Session  *model.Session
	Requests *presenter.Requests
	RootView *view.RootView

	// Presenters
	Navigation  *presenter.NavigationPresenter
	Canvas      *presenter.CanvasPresenter
	Annotations *presenter.AnnotationPresenter
	Status      *presenter.StatusPresenter
	Loop        *presenter.Loop
}

// BuildContainer constructs all components. Nothing talks to the backend
// until the first video is selected. Widgets are created later by
// RootView.Build.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, Logger: logger}
	client, err := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout(), logger)
	if err != nil {
		return nil, err
	}
	c.Client = client
	frames, err := backend.NewFrames(client, cfg.FrameCacheSize, cfg.RequestTimeout(), logger)
	if err != nil {
		return nil, fmt.Errorf("frame cache: %w", err)
	}
	c.Frames = frames

	c.Session = model.NewSession(float64(cfg.CanvasWidth), float64(cfg.CanvasHeight), viewport.Options{
		ZoomIntensity: cfg.ZoomIntensity,
		MinScale:      cfg.MinScale,
		MaxScale:      cfg.MaxScale,
	}, logger)
	c.Session.ResetViewOnFrameChange = cfg.ResetViewOnFrameChange
	c.Requests = presenter.NewRequests(client, frames, cfg.RequestTimeout(), logger)

	// View
	c.RootView = view.NewRootView(cfg.CanvasWidth, cfg.CanvasHeight, logger)
	rv := c.RootView

	// Presenters
	c.Navigation = presenter.NewNavigationPresenter(c.Session, c.Requests, rv, rv, logger)
	c.Canvas = presenter.NewCanvasPresenter(c.Session, rv, rv, theme.CanvasStyle(), logger)
	c.Annotations = presenter.NewAnnotationPresenter(c.Session, c.Requests, rv, rv, logger)
	c.Status = presenter.NewStatusPresenter(c.Session, c.Requests, c.Annotations, rv)
	// Schedule is set by the app once the Tk loop is running.
	c.Loop = presenter.NewLoop(c.Session, c.Requests, c.Navigation, c.Canvas, c.Annotations, c.Status, nil)
	return c, nil
}

// Handlers maps view actions to presenter methods.
func (c *AppContainer) Handlers(exit func()) view.Handlers {
	return view.Handlers{
		SelectVideo: c.Navigation.SelectVideo,
		Step:        c.Navigation.Step,
		Seek:        c.Navigation.SliderClicked,
		Canvas: view.CanvasHandlers{
			Press:   c.Canvas.Press,
			Motion:  c.Canvas.Motion,
			Release: c.Canvas.Release,
			Wheel:   c.Canvas.Wheel,
			Leave:   c.Canvas.Leave,
		},
		Zoom:         c.Canvas.Wheel,
		ResetView:    c.Canvas.ResetView,
		ToggleDraw:   c.Canvas.ToggleDraw,
		CarryForward: c.Annotations.CarryForward,
		Save:         c.Annotations.Save,
		Delete:       c.Annotations.Delete,
		Resize:       c.Canvas.Resize,
		Exit:         exit,
	}
}
