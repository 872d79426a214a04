package view

import (
	"image"

	"github.com/soocke/frame-annotator/ui/images"
	"github.com/soocke/frame-annotator/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasHandlers receive pointer input in canvas pixels.
type CanvasHandlers struct {
	Press   func(button int, x, y float64)
	Motion  func(x, y float64)
	Release func(x, y float64)
	Wheel   func(direction int)
	Leave   func()
}

// CanvasView shows the composited canvas image and forwards pointer input.
type CanvasView interface {
	ShowCanvas(img image.Image)
}

type canvasView struct {
	label *LabelWidget
	photo *Img // current Tk photo, deleted when replaced
	w, h  int
}

// NewCanvasView creates a w x h canvas label in parent at (row, col) and
// binds its mouse events to h.
func NewCanvasView(parent *FrameWidget, row, col, w, h int, hs CanvasHandlers) CanvasView {
	v := &canvasView{w: w, h: h}
	v.photo = NewPhoto(Data(images.EncodePNG(images.Placeholder(w, h, "", theme.CanvasStyle()))))
	v.label = Label(Image(v.photo), Anchor("nw"), Borderwidth(0), Padx(0), Pady(0), Cursor("crosshair"))
	Grid(v.label, In(parent), Row(row), Column(col), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	v.bind(hs)
	return v
}

func (v *canvasView) bind(hs CanvasHandlers) {
	press := func(button int) func(e *Event) {
		return func(e *Event) {
			if hs.Press != nil {
				hs.Press(button, float64(e.X), float64(e.Y))
			}
		}
	}
	Bind(v.label, "<ButtonPress-1>", Command(press(1)))
	Bind(v.label, "<ButtonPress-2>", Command(press(2)))
	motion := func(e *Event) {
		if hs.Motion != nil {
			hs.Motion(float64(e.X), float64(e.Y))
		}
	}
	Bind(v.label, "<Motion>", Command(motion))
	release := func(e *Event) {
		if hs.Release != nil {
			hs.Release(float64(e.X), float64(e.Y))
		}
	}
	Bind(v.label, "<ButtonRelease-1>", Command(release))
	Bind(v.label, "<ButtonRelease-2>", Command(release))
	Bind(v.label, "<MouseWheel>", Command(func(e *Event) {
		if hs.Wheel == nil || e.Delta == 0 {
			return
		}
		if e.Delta > 0 {
			hs.Wheel(1)
		} else {
			hs.Wheel(-1)
		}
	}))
	// X11 without wheel translation.
	Bind(v.label, "<Button-4>", Command(func() {
		if hs.Wheel != nil {
			hs.Wheel(1)
		}
	}))
	Bind(v.label, "<Button-5>", Command(func() {
		if hs.Wheel != nil {
			hs.Wheel(-1)
		}
	}))
	Bind(v.label, "<Leave>", Command(func() {
		if hs.Leave != nil {
			hs.Leave()
		}
	}))
}

func (v *canvasView) ShowCanvas(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	pngBytes := images.EncodePNG(img)
	images.Recycle(img)
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.photo))
}
