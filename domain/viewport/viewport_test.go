package viewport

import (
	"math"
	"testing"

	"github.com/soocke/frame-annotator/domain/geom"
)

const eps = 1e-9

func TestViewport_RoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		scale  int // zoom notches
		offset geom.Point
	}{
		{"identity", 0, geom.Point{}},
		{"zoomed in and panned", 7, geom.Pt(-35.5, 120)},
		{"zoomed out", -12, geom.Pt(400, -3)},
	}
	points := []geom.Point{{X: 0, Y: 0}, {X: 12.25, Y: 99}, {X: -40, Y: 800}, {X: 1919, Y: 1079}}
	for _, tc := range cases {
		v := New(800, 600, Options{})
		v.SetImageSize(640, 480)
		for i := 0; i < abs(tc.scale); i++ {
			v.ZoomAt(geom.Pt(400, 300), sign(tc.scale))
		}
		v.Pan(tc.offset)
		for _, p := range points {
			got := v.ImageToScreen(v.ScreenToImage(p))
			if !got.Eq(p, 1e-6) {
				t.Fatalf("%s: round trip of %v gave %v", tc.name, p, got)
			}
			back := v.ScreenToImage(v.ImageToScreen(p))
			if !back.Eq(p, 1e-6) {
				t.Fatalf("%s: inverse round trip of %v gave %v", tc.name, p, back)
			}
		}
	}
}

func TestViewport_ZoomKeepsCursorPointFixed(t *testing.T) {
	v := New(800, 600, Options{})
	v.SetImageSize(1280, 720)
	v.Pan(geom.Pt(25, -40))
	cursor := geom.Pt(610, 95)
	for _, dir := range []int{1, 1, 1, -1, 1, -1, -1, -1, -1} {
		before := v.ScreenToImage(cursor)
		v.ZoomAt(cursor, dir)
		after := v.ImageToScreen(before)
		if !after.Eq(cursor, 1e-6) {
			t.Fatalf("cursor drifted after zoom dir=%d: got %v want %v", dir, after, cursor)
		}
	}
}

func TestViewport_ZoomFactor(t *testing.T) {
	v := New(100, 100, Options{})
	v.ZoomAt(geom.Pt(50, 50), 1)
	if math.Abs(v.Scale()-math.Exp(0.1)) > eps {
		t.Fatalf("expected scale exp(0.1), got %v", v.Scale())
	}
	v.ZoomAt(geom.Pt(50, 50), -1)
	if math.Abs(v.Scale()-1) > eps {
		t.Fatalf("expected scale back to 1, got %v", v.Scale())
	}
	// Zooming at the canvas centre with no offset leaves the offset alone.
	if v.Offset() != (geom.Point{}) {
		t.Fatalf("unexpected offset %v", v.Offset())
	}
}

func TestViewport_ScaleClampedAndPositive(t *testing.T) {
	v := New(200, 200, Options{MinScale: 0.5, MaxScale: 2})
	v.SetImageSize(50, 50)
	cursor := geom.Pt(10, 170)
	for i := 0; i < 50; i++ {
		before := v.ScreenToImage(cursor)
		v.ZoomAt(cursor, 1)
		if got := v.ImageToScreen(before); !got.Eq(cursor, 1e-6) {
			t.Fatalf("fixed point lost while clamping: %v", got)
		}
	}
	if v.Scale() != 2 {
		t.Fatalf("expected max scale 2, got %v", v.Scale())
	}
	for i := 0; i < 50; i++ {
		v.ZoomAt(cursor, -1)
	}
	if v.Scale() != 0.5 {
		t.Fatalf("expected min scale 0.5, got %v", v.Scale())
	}
}

func TestViewport_PanIsScreenSpace(t *testing.T) {
	v := New(300, 300, Options{})
	v.SetImageSize(100, 100)
	v.ZoomAt(geom.Pt(150, 150), 1)
	v.ZoomAt(geom.Pt(150, 150), 1)
	p := v.ImageToScreen(geom.Pt(10, 10))
	v.Pan(geom.Pt(7, -3))
	q := v.ImageToScreen(geom.Pt(10, 10))
	if !q.Sub(p).Eq(geom.Pt(7, -3), eps) {
		t.Fatalf("pan should move by the screen delta, moved %v", q.Sub(p))
	}
}

func TestViewport_ResizeKeepsScaleAndOffset(t *testing.T) {
	v := New(300, 200, Options{})
	v.ZoomAt(geom.Pt(10, 10), 1)
	v.Pan(geom.Pt(5, 5))
	scale, off := v.Scale(), v.Offset()
	v.Resize(1024, 768)
	if v.Scale() != scale || v.Offset() != off {
		t.Fatalf("resize changed framing: scale=%v offset=%v", v.Scale(), v.Offset())
	}
	if v.CanvasSize() != geom.Sz(1024, 768) {
		t.Fatalf("canvas size not updated: %v", v.CanvasSize())
	}
}

func TestViewport_TransformMatchesImageToScreen(t *testing.T) {
	v := New(640, 480, Options{})
	v.SetImageSize(320, 200)
	v.ZoomAt(geom.Pt(100, 400), 1)
	v.Pan(geom.Pt(-12, 30))
	m := v.Transform()
	for _, p := range []geom.Point{{X: 0, Y: 0}, {X: 320, Y: 200}, {X: 17, Y: 3}} {
		x := m[0]*p.X + m[1]*p.Y + m[2]
		y := m[3]*p.X + m[4]*p.Y + m[5]
		want := v.ImageToScreen(p)
		if !geom.Pt(x, y).Eq(want, 1e-9) {
			t.Fatalf("transform(%v)=(%v,%v) want %v", p, x, y, want)
		}
	}
}

func TestViewport_Reset(t *testing.T) {
	v := New(100, 100, Options{})
	v.ZoomAt(geom.Pt(3, 3), 1)
	v.Pan(geom.Pt(9, 9))
	v.Reset()
	if v.Scale() != 1 || v.Offset() != (geom.Point{}) {
		t.Fatalf("reset failed: scale=%v offset=%v", v.Scale(), v.Offset())
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}
