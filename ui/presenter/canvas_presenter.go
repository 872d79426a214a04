package presenter

import (
	"image"
	"log/slog"
	"math"

	"github.com/soocke/frame-annotator/domain/geom"
	"github.com/soocke/frame-annotator/domain/navigation"
	"github.com/soocke/frame-annotator/ui/images"
	"github.com/soocke/frame-annotator/ui/model"
)

// Pointer buttons as reported by Tk.
const (
	ButtonLeft   = 1
	ButtonMiddle = 2
)

// CanvasView displays the composited canvas.
type CanvasView interface {
	ShowCanvas(img image.Image)
}

// DrawModeView reflects the draw toggle.
type DrawModeView interface {
	SetDrawMode(on bool)
}

// CanvasPresenter turns pointer and keyboard input into viewport and
// annotation changes, and renders the canvas.
type CanvasPresenter struct {
	sess     *model.Session
	view     CanvasView
	drawView DrawModeView
	style    images.Style
	logger   *slog.Logger
	cursor   geom.Point
	hasMouse bool
}

func NewCanvasPresenter(sess *model.Session, view CanvasView, drawView DrawModeView, style images.Style, logger *slog.Logger) *CanvasPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CanvasPresenter{sess: sess, view: view, drawView: drawView, style: style, logger: logger}
}

// Press starts a drag. Left draws in draw mode and pans otherwise; middle
// always pans.
func (p *CanvasPresenter) Press(button int, x, y float64) {
	if p == nil || p.sess == nil {
		return
	}
	pt := p.track(x, y)
	switch {
	case button == ButtonLeft && p.sess.Draw.Enabled() && p.sess.CanEdit():
		p.sess.Drag.Begin(model.DragDraw, pt)
	case button == ButtonLeft || button == ButtonMiddle:
		p.sess.Drag.Begin(model.DragPan, pt)
	}
}

// Motion follows the pointer; it pans or grows the draft while dragging.
func (p *CanvasPresenter) Motion(x, y float64) {
	if p == nil || p.sess == nil {
		return
	}
	pt := p.track(x, y)
	switch p.sess.Drag.Kind() {
	case model.DragPan:
		p.sess.View.Pan(p.sess.Drag.Move(pt))
		p.sess.MarkDirty()
	case model.DragDraw:
		p.sess.Drag.Move(pt)
		p.sess.MarkDirty()
	}
}

// Release ends the drag. A finished draw commits the rectangle unless it has
// no area.
func (p *CanvasPresenter) Release(x, y float64) {
	if p == nil || p.sess == nil {
		return
	}
	p.Motion(x, y)
	kind, start, end := p.sess.Drag.End()
	if kind != model.DragDraw {
		return
	}
	p.sess.MarkDirty()
	if !p.sess.CanEdit() {
		return
	}
	frame := p.sess.Nav.Current()
	a, b := p.sess.View.ScreenToImage(start), p.sess.View.ScreenToImage(end)
	id, ok := p.sess.Store.AddRectangle(frame, a, b, p.sess.ImageSize())
	if !ok {
		p.logger.Debug("degenerate rectangle dropped", "frame", frame)
		return
	}
	p.logger.Debug("rectangle added", "frame", frame, "id", id)
}

// Wheel zooms at the last pointer position. Positive direction zooms in.
func (p *CanvasPresenter) Wheel(direction int) {
	if p == nil || p.sess == nil {
		return
	}
	at := p.cursor
	if !p.hasMouse {
		at = p.sess.View.CanvasSize().Center()
	}
	p.sess.View.ZoomAt(at, direction)
	p.sess.MarkDirty()
}

// Leave forgets the pointer so keyboard zoom targets the canvas center.
func (p *CanvasPresenter) Leave() {
	if p != nil {
		p.hasMouse = false
	}
}

// Resize follows the canvas widget size.
func (p *CanvasPresenter) Resize(w, h int) {
	if p == nil || p.sess == nil || w <= 1 || h <= 1 {
		return
	}
	cur := p.sess.View.CanvasSize()
	if int(cur.W) == w && int(cur.H) == h {
		return
	}
	p.sess.View.Resize(float64(w), float64(h))
	p.sess.MarkDirty()
}

// ResetView restores scale 1 and no pan.
func (p *CanvasPresenter) ResetView() {
	if p == nil || p.sess == nil {
		return
	}
	p.sess.View.Reset()
	p.sess.MarkDirty()
}

// ToggleDraw flips draw mode.
func (p *CanvasPresenter) ToggleDraw() {
	if p == nil || p.sess == nil {
		return
	}
	on := p.sess.Draw.Toggle()
	if !on && p.sess.Drag.Kind() == model.DragDraw {
		p.sess.Drag.End()
	}
	if p.drawView != nil {
		p.drawView.SetDrawMode(on)
	}
	p.sess.MarkDirty()
}

// Render composites the current frame, its rectangles and the draft and
// pushes the result to the view.
func (p *CanvasPresenter) Render() {
	if p == nil || p.sess == nil || p.view == nil {
		return
	}
	p.view.ShowCanvas(images.Render(p.Scene()))
}

// Scene describes what Render draws.
func (p *CanvasPresenter) Scene() images.Scene {
	s := p.sess
	size := s.View.CanvasSize()
	scene := images.Scene{
		Width:     int(size.W),
		Height:    int(size.H),
		Transform: s.View.Transform(),
		Style:     p.style,
	}
	img := s.Frame.Image()
	if img == nil {
		scene.Message = p.placeholder()
		return scene
	}
	scene.Frame = img
	imgSize := s.ImageSize()
	// Rectangles belong to the displayed frame, which may lag the target.
	frame := s.Frame.Shown().Frame
	rects := s.Store.ListRectangles(frame)
	for _, id := range s.Store.SortedIDs(frame) {
		r := rects[id]
		tl, br := r.Bounds(imgSize)
		scene.Boxes = append(scene.Boxes, images.Box{
			Min:   toPixel(s.View.ImageToScreen(tl)),
			Max:   toPixel(s.View.ImageToScreen(br)),
			Label: ShortID(id),
		})
	}
	if start, end, ok := s.Drag.Draft(); ok {
		scene.Draft = &images.Box{Min: toPixel(start), Max: toPixel(end)}
	}
	return scene
}

func (p *CanvasPresenter) placeholder() string {
	switch {
	case p.sess.Nav.State() == navigation.StateNoVideo && p.sess.Nav.Pending():
		return "loading video..."
	case p.sess.Nav.State() == navigation.StateNoVideo:
		return "select a video"
	case p.sess.Frame.Loading():
		return "loading frame..."
	default:
		return "no frame"
	}
}

func (p *CanvasPresenter) track(x, y float64) geom.Point {
	p.cursor = geom.Pt(x, y)
	p.hasMouse = true
	return p.cursor
}

func toPixel(pt geom.Point) image.Point {
	return image.Pt(int(math.Round(pt.X)), int(math.Round(pt.Y)))
}

// ShortID returns the trailing part of a rectangle id for labels.
func ShortID(id string) string {
	const n = 4
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}
