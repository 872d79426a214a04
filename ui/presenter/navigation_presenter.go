package presenter

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/frame-annotator/domain/navigation"
	"github.com/soocke/frame-annotator/ui/images"
	"github.com/soocke/frame-annotator/ui/model"
)

// FrameRequester schedules backend work for navigation.
type FrameRequester interface {
	Setup(req navigation.SetupRequest)
	Frame(req navigation.FrameRequest, image string)
	Prefetch(video string, n int)
}

// NavigationView shows the video list, the slider and the frame readout.
type NavigationView interface {
	SetVideos(names []string)
	SetSelectedVideo(name string)
	SetSlider(value, max int)
	SetFrameLabel(text string)
}

// Alerter shows a blocking message to the user.
type Alerter interface{ Alert(title, message string) }

// NavigationPresenter drives video selection and frame stepping.
type NavigationPresenter struct {
	sess   *model.Session
	req    FrameRequester
	view   NavigationView
	alert  Alerter
	logger *slog.Logger

	gallery     []string // file names when browsing the gallery
	resetOnShow bool
	latest      navigation.State
	pending     []navigation.State
}

// NewNavigationPresenter wires the presenter and registers it as a state
// listener of the session navigator.
func NewNavigationPresenter(sess *model.Session, req FrameRequester, view NavigationView, alert Alerter, logger *slog.Logger) *NavigationPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	p := &NavigationPresenter{sess: sess, req: req, view: view, alert: alert, logger: logger}
	if sess != nil {
		sess.Nav.AddListener(p.OnState)
	}
	return p
}

// Init fills the selector with the configured videos and the gallery entry.
func (p *NavigationPresenter) Init(videos []string) {
	if p == nil || p.sess == nil {
		return
	}
	p.sess.Videos = append(append([]string(nil), videos...), model.GalleryVideo)
	if p.view != nil {
		p.view.SetVideos(p.sess.Videos)
	}
	p.Refresh()
}

// SelectVideo asks the backend to open name. The current video stays on
// screen until the answer arrives.
func (p *NavigationPresenter) SelectVideo(name string) {
	if p == nil || p.sess == nil {
		return
	}
	req, err := p.sess.Nav.SelectVideo(name)
	if err != nil {
		p.fail("Select video", err)
		return
	}
	p.logger.Info("selecting video", "video", name, "generation", req.Generation)
	p.req.Setup(req)
	p.sess.MarkDirty()
}

// SetFrame moves to frame n (clamped) and schedules its load.
func (p *NavigationPresenter) SetFrame(n int) {
	if p == nil || p.sess == nil {
		return
	}
	req, changed, err := p.sess.Nav.SetFrame(n)
	p.apply(req, changed, err)
}

// Step moves delta frames from the current target.
func (p *NavigationPresenter) Step(delta int) {
	if p == nil || p.sess == nil {
		return
	}
	req, changed, err := p.sess.Nav.Step(delta)
	p.apply(req, changed, err)
}

// SliderClicked maps a click at x on a slider of width w to a frame.
func (p *NavigationPresenter) SliderClicked(x, w int) {
	if p == nil || p.sess == nil {
		return
	}
	if n := images.SliderValue(x, w, p.sess.Nav.Max()); n >= 0 {
		p.SetFrame(n)
	}
}

func (p *NavigationPresenter) apply(req navigation.FrameRequest, changed bool, err error) {
	if errors.Is(err, navigation.ErrNoVideo) {
		return
	}
	if err != nil {
		p.fail("Change frame", err)
		return
	}
	if !changed {
		// Same target: only retry when nothing is on its way or on screen.
		if p.sess.Frame.Loading() || p.sess.Nav.Accept(p.sess.Frame.Shown()) {
			return
		}
	} else if p.sess.ResetViewOnFrameChange {
		p.resetOnShow = true
	}
	p.requestFrame(req)
	p.sess.MarkDirty()
}

func (p *NavigationPresenter) requestFrame(req navigation.FrameRequest) {
	p.sess.Frame.SetLoading(true)
	p.req.Frame(req, p.galleryName(req))
}

func (p *NavigationPresenter) galleryName(req navigation.FrameRequest) string {
	if req.Video != model.GalleryVideo || req.Frame < 0 || req.Frame >= len(p.gallery) {
		return ""
	}
	return p.gallery[req.Frame]
}

// OnState queues a navigator transition. The latest one is reflected on the
// next Tick.
func (p *NavigationPresenter) OnState(prev, next navigation.State) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, next)
}

// Tick flushes queued state transitions.
func (p *NavigationPresenter) Tick(now time.Time) {
	if p == nil || len(p.pending) == 0 {
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	if last != p.latest {
		p.logger.Debug("navigation state", "from", p.latest, "to", last)
		p.latest = last
	}
	// Loaded -> Loaded means another video; the selector follows either way.
	if p.view != nil {
		p.view.SetSelectedVideo(p.sess.Nav.Video())
	}
	p.sess.MarkDirty()
}

// Refresh pushes slider and readout to the view.
func (p *NavigationPresenter) Refresh() {
	if p == nil || p.sess == nil || p.view == nil {
		return
	}
	maxFrame := p.sess.Nav.Max()
	if maxFrame < 0 {
		p.view.SetSlider(0, -1)
		p.view.SetFrameLabel("Frame: -")
		return
	}
	cur := p.sess.Nav.Current()
	p.view.SetSlider(cur, maxFrame)
	label := fmt.Sprintf("Frame: %d / %d", cur, maxFrame)
	if name := p.galleryName(navigation.FrameRequest{Video: p.sess.Nav.Video(), Frame: cur}); name != "" {
		label += "  " + name
	}
	p.view.SetFrameLabel(label)
}

func (p *NavigationPresenter) handleSetup(res requestResult) {
	nav := p.sess.Nav
	if res.err != nil {
		if nav.VideoFailed(res.setupReq) {
			p.fail("Could not load video "+res.setupReq.Video, res.err)
			p.sess.MarkDirty()
		}
		return
	}
	first, err := nav.VideoReady(res.setupReq, res.setup.TotalFrames)
	if errors.Is(err, navigation.ErrStale) {
		p.logger.Debug("stale setup discarded", "video", res.setupReq.Video)
		return
	}
	if err != nil {
		p.fail("Could not load video "+res.setupReq.Video, err)
		p.sess.MarkDirty()
		return
	}
	p.gallery = res.images
	p.sess.Store.ReplaceAll(res.setup.Rectangles)
	p.sess.Frame.Clear()
	p.sess.Drag.End()
	p.resetOnShow = true
	p.logger.Info("video loaded",
		"video", first.Video,
		"total_frames", res.setup.TotalFrames,
		"annotated_frames", len(p.sess.Store.Frames()),
		"took", res.took,
	)
	p.requestFrame(first)
	p.sess.MarkDirty()
}

func (p *NavigationPresenter) handleFrame(res requestResult) {
	nav := p.sess.Nav
	if !nav.Accept(res.frameReq) {
		p.logger.Debug("stale frame discarded", "video", res.frameReq.Video, "frame", res.frameReq.Frame, "current", nav.Current())
		return
	}
	if res.err != nil {
		p.sess.Frame.SetLoading(false)
		p.fail(fmt.Sprintf("Could not load frame %d", res.frameReq.Frame), res.err)
		p.sess.MarkDirty()
		return
	}
	img := res.frame.Image
	b := img.Bounds()
	p.sess.Frame.Show(res.frameReq, img, res.frame.Bytes, time.Now())
	p.sess.View.SetImageSize(float64(b.Dx()), float64(b.Dy()))
	if p.resetOnShow {
		p.sess.View.Reset()
		p.resetOnShow = false
	}
	if next := res.frameReq.Frame + 1; next <= nav.Max() {
		p.req.Prefetch(res.frameReq.Video, next)
	}
	p.sess.MarkDirty()
}

func (p *NavigationPresenter) fail(title string, err error) {
	p.logger.Error(title, "error", err)
	if p.alert != nil {
		p.alert.Alert(title, err.Error())
	}
}
