package presenter

import (
	"testing"

	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/geom"
)

// ready loads a video and displays its first frame.
func (f *fixture) ready() {
	f.loadVideo("a.mp4", 10, nil)
	f.deliver(f.req.lastFrame())
}

func TestCanvas_DrawCommitsNormalizedRectangle(t *testing.T) {
	f := newFixture()
	f.ready()
	f.canvas.ToggleDraw()
	if !f.drawV.on {
		t.Fatalf("draw view not updated")
	}
	f.canvas.Press(ButtonLeft, 10, 10)
	f.canvas.Motion(30, 30)
	if f.canvas.Scene().Draft == nil {
		t.Fatalf("draft should be drawn while dragging")
	}
	f.canvas.Release(50, 50)

	rects := f.sess.Store.ListRectangles(0)
	if len(rects) != 1 {
		t.Fatalf("expected one rectangle, got %d", len(rects))
	}
	for _, r := range rects {
		if !r.Center.Eq(geom.Pt(0.3, 0.3), 1e-9) || !geom.Pt(r.Size.W, r.Size.H).Eq(geom.Pt(0.4, 0.4), 1e-9) {
			t.Fatalf("unexpected rectangle %+v", r)
		}
	}
	if !f.sess.Store.Dirty(0) {
		t.Fatalf("new rectangle should mark the frame unsaved")
	}
	if f.canvas.Scene().Draft != nil {
		t.Fatalf("draft should be gone after release")
	}
}

func TestCanvas_ClickWithoutDragAddsNothing(t *testing.T) {
	f := newFixture()
	f.ready()
	f.canvas.ToggleDraw()
	f.canvas.Press(ButtonLeft, 20, 20)
	f.canvas.Release(20, 20)
	if n := f.sess.Store.Count(0); n != 0 {
		t.Fatalf("degenerate rectangle stored (%d)", n)
	}
}

func TestCanvas_DrawNeedsDisplayedTargetFrame(t *testing.T) {
	f := newFixture()
	f.ready()
	f.canvas.ToggleDraw()
	f.nav.SetFrame(5) // not delivered yet
	f.canvas.Press(ButtonLeft, 10, 10)
	f.canvas.Release(50, 50)
	if len(f.sess.Store.Frames()) != 0 {
		t.Fatalf("rectangles must not be added while the frame is loading")
	}
	if f.sess.View.Offset() != geom.Pt(40, 40) {
		t.Fatalf("left drag should fall back to panning, offset %v", f.sess.View.Offset())
	}
}

func TestCanvas_PanAndZoomAtCursor(t *testing.T) {
	f := newFixture()
	f.ready()
	f.canvas.Press(ButtonMiddle, 50, 50)
	f.canvas.Motion(60, 45)
	f.canvas.Release(60, 45)
	if f.sess.View.Offset() != geom.Pt(10, -5) {
		t.Fatalf("unexpected pan offset %v", f.sess.View.Offset())
	}

	cursor := geom.Pt(70, 20)
	f.canvas.Motion(cursor.X, cursor.Y)
	before := f.sess.View.ScreenToImage(cursor)
	f.canvas.Wheel(1)
	f.canvas.Wheel(1)
	after := f.sess.View.ImageToScreen(before)
	if !after.Eq(cursor, 1e-9) {
		t.Fatalf("zoom moved the point under the cursor: %v -> %v", cursor, after)
	}
	if f.sess.View.Scale() <= 1 {
		t.Fatalf("wheel up should zoom in")
	}
	f.canvas.ResetView()
	if f.sess.View.Scale() != 1 || f.sess.View.Offset() != (geom.Point{}) {
		t.Fatalf("reset view failed")
	}
}

func TestCanvas_RenderShowsBoxesForDisplayedFrame(t *testing.T) {
	f := newFixture()
	f.ready()
	f.sess.Store.SetFrameAnnotations(0, annotation.Rectangles{"1700000000000-abcd1234": rectAt(0.5, 0.5)})
	scene := f.canvas.Scene()
	if scene.Frame == nil || len(scene.Boxes) != 1 {
		t.Fatalf("expected frame and one box, got %+v", scene)
	}
	b := scene.Boxes[0]
	if b.Min.X != 45 || b.Min.Y != 45 || b.Max.X != 55 || b.Max.Y != 55 || b.Label != "1234" {
		t.Fatalf("unexpected box %+v", b)
	}
	f.canvas.Render()
	if f.canV.shown != 1 || f.canV.last.Bounds().Dx() != 100 {
		t.Fatalf("canvas not pushed to the view")
	}
}

func TestCanvas_PlaceholderMessages(t *testing.T) {
	f := newFixture()
	if msg := f.canvas.Scene().Message; msg != "select a video" {
		t.Fatalf("unexpected placeholder %q", msg)
	}
	f.nav.SelectVideo("a.mp4")
	if msg := f.canvas.Scene().Message; msg != "loading video..." {
		t.Fatalf("unexpected placeholder %q", msg)
	}
}

func TestCanvas_ResizeKeepsFraming(t *testing.T) {
	f := newFixture()
	f.sess.View.Pan(geom.Pt(5, 5))
	f.sess.TakeDirty()
	f.canvas.Resize(300, 200)
	if f.sess.View.CanvasSize() != geom.Sz(300, 200) || f.sess.View.Offset() != geom.Pt(5, 5) {
		t.Fatalf("resize should only change the canvas size")
	}
	if !f.sess.TakeDirty() {
		t.Fatalf("resize should request a redraw")
	}
	f.canvas.Resize(300, 200)
	if f.sess.TakeDirty() {
		t.Fatalf("same size should not redraw")
	}
}
