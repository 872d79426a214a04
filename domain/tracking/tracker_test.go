package tracking

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/geom"
)

// scene draws a 100x100 background with a textured 20x20 patch at (px, py).
func scene(px, py int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := uint8((x*7 + y*3) % 50)
			if x >= px && x < px+20 && y >= py && y < py+20 {
				v = uint8(((x-px)*37 + (y-py)*91) % 256)
			}
			img.SetRGBA(x, y, color.RGBA{v, v, v, 0xff})
		}
	}
	return img
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTrack_FollowsShiftedPatch(t *testing.T) {
	rects := annotation.Rectangles{
		"a": {Center: geom.Pt(0.3, 0.3), Size: geom.Sz(0.2, 0.2)},
	}
	got, err := Track(context.Background(), scene(20, 20), scene(25, 23), rects, Options{Stride: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Found || got[0].SourceID != "a" {
		t.Fatalf("patch not found: %+v", got)
	}
	r := got[0].Rect
	if !near(r.Center.X, 0.35) || !near(r.Center.Y, 0.33) || !near(r.Size.W, 0.2) || !near(r.Size.H, 0.2) {
		t.Fatalf("unexpected rectangle %+v (score %.3f scale %.2f)", r, got[0].Score, got[0].Scale)
	}
}

func TestTrack_CopiesWhenNotFound(t *testing.T) {
	src := annotation.Rectangle{Center: geom.Pt(0.3, 0.3), Size: geom.Sz(0.2, 0.2)}
	flat := image.NewRGBA(image.Rect(0, 0, 100, 100))
	got, err := Track(context.Background(), scene(20, 20), flat, annotation.Rectangles{"a": src}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Found || got[0].Rect != src {
		t.Fatalf("flat frame should keep the source box: %+v", got[0])
	}
}

func TestTrack_TinyBoxesAndMissingFrames(t *testing.T) {
	tiny := annotation.Rectangle{Center: geom.Pt(0.5, 0.5), Size: geom.Sz(0.02, 0.02)}
	rects := annotation.Rectangles{"b": tiny, "a": tiny}
	got, err := Track(context.Background(), scene(20, 20), scene(20, 20), rects, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].SourceID != "a" || got[1].SourceID != "b" {
		t.Fatalf("results must be ordered by id: %+v", got)
	}
	if got[0].Found || got[0].Rect != tiny {
		t.Fatalf("tiny box should be copied: %+v", got[0])
	}
	got, err = Track(context.Background(), nil, scene(0, 0), rects, Options{})
	if err != nil || len(got) != 2 || got[1].Rect != tiny {
		t.Fatalf("missing previous frame should copy: %+v %v", got, err)
	}
}

func TestTrack_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rects := annotation.Rectangles{"a": {Center: geom.Pt(0.3, 0.3), Size: geom.Sz(0.2, 0.2)}}
	if _, err := Track(ctx, scene(20, 20), scene(20, 20), rects, Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestGrayPlane_MatchExact(t *testing.T) {
	frame := scene(40, 10)
	plane := newGrayPlane(frame, frame.Bounds())
	tmpl := newTemplate(scene(0, 0).SubImage(image.Rect(0, 0, 20, 20)), 20, 20)
	x, y, score := plane.match(tmpl, 1)
	if x != 40 || y != 10 || math.Abs(score-1) > 1e-6 {
		t.Fatalf("match at (%d,%d) score %.4f", x, y, score)
	}
}
