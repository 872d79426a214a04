// Package tracking carries rectangles from one frame to the next by locating
// each rectangle's content in the new frame with normalized
// cross-correlation (NCC) template matching.
package tracking

import (
	"context"
	"image"
	"math"
	"runtime"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/geom"
)

// Options tunes the search. Zero fields fall back to DefaultOptions.
type Options struct {
	Threshold    float64   // minimum NCC score to accept a match
	SearchMargin float64   // search window growth around the old box, as a fraction of its larger side
	Scales       []float64 // template scale factors to try
	Stride       int       // coarse scan stride in pixels
	MinSide      int       // boxes smaller than this (pixels) are copied unchanged
}

// DefaultOptions returns the settings used by the annotator.
func DefaultOptions() Options {
	return Options{
		Threshold:    0.7,
		SearchMargin: 0.5,
		Scales:       []float64{0.9, 1, 1.1},
		Stride:       2,
		MinSide:      6,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.SearchMargin <= 0 {
		o.SearchMargin = d.SearchMargin
	}
	if len(o.Scales) == 0 {
		o.Scales = d.Scales
	}
	if o.Stride <= 0 {
		o.Stride = d.Stride
	}
	if o.MinSide <= 0 {
		o.MinSide = d.MinSide
	}
	return o
}

// Match is where one source rectangle ended up in the new frame. When Found
// is false Rect is the source rectangle unchanged.
type Match struct {
	SourceID string
	Rect     annotation.Rectangle
	Score    float64
	Scale    float64
	Found    bool
}

// Track locates every rectangle of rects (normalized to prev) in cur. Results
// are ordered by source id. Rectangles are matched in parallel.
func Track(ctx context.Context, prev, cur image.Image, rects annotation.Rectangles, opts Options) ([]Match, error) {
	opts = opts.withDefaults()
	ids := make([]string, 0, len(rects))
	for id := range rects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Match, len(ids))
	if prev == nil || cur == nil {
		for i, id := range ids {
			out[i] = Match{SourceID: id, Rect: rects[id]}
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = trackOne(prev, cur, id, rects[id], opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func trackOne(prev, cur image.Image, id string, r annotation.Rectangle, opts Options) Match {
	m := Match{SourceID: id, Rect: r, Score: -1}
	pb, cb := prev.Bounds(), cur.Bounds()
	box := pixelRect(r, pb)
	if box.Dx() < opts.MinSide || box.Dy() < opts.MinSide {
		return m
	}

	// Same box in cur's pixel space, grown by the margin.
	sx, sy := float64(cb.Dx())/float64(pb.Dx()), float64(cb.Dy())/float64(pb.Dy())
	tw, th := int(math.Round(float64(box.Dx())*sx)), int(math.Round(float64(box.Dy())*sy))
	grow := int(opts.SearchMargin * float64(max(tw, th)))
	at := image.Pt(cb.Min.X+int(math.Round(float64(box.Min.X-pb.Min.X)*sx)), cb.Min.Y+int(math.Round(float64(box.Min.Y-pb.Min.Y)*sy)))
	search := image.Rectangle{Min: at, Max: at.Add(image.Pt(tw, th))}.Inset(-grow).Intersect(cb)
	if search.Empty() {
		return m
	}
	plane := newGrayPlane(cur, search)
	src := imaging.Crop(prev, box)

	for _, s := range opts.Scales {
		if s <= 0 {
			continue
		}
		t := newTemplate(src, int(math.Round(float64(tw)*s)), int(math.Round(float64(th)*s)))
		if t == nil {
			continue
		}
		x, y, score := plane.match(t, opts.Stride)
		if score > m.Score {
			m.Score, m.Scale = score, s
			if score >= opts.Threshold {
				found := image.Rect(x, y, x+t.W, y+t.H).Add(search.Min)
				m.Rect = normalized(found, cb)
				m.Found = true
			}
		}
	}
	if !m.Found {
		m.Rect = r
	}
	return m
}

// pixelRect converts r to whole pixels inside b.
func pixelRect(r annotation.Rectangle, b image.Rectangle) image.Rectangle {
	tl, br := r.Bounds(geom.Sz(float64(b.Dx()), float64(b.Dy())))
	px := image.Rect(
		b.Min.X+int(math.Round(tl.X)), b.Min.Y+int(math.Round(tl.Y)),
		b.Min.X+int(math.Round(br.X)), b.Min.Y+int(math.Round(br.Y)),
	)
	return px.Intersect(b)
}

func normalized(px, b image.Rectangle) annotation.Rectangle {
	w, h := float64(b.Dx()), float64(b.Dy())
	return annotation.Rectangle{
		Center: geom.Pt((float64(px.Min.X-b.Min.X)+float64(px.Dx())/2)/w, (float64(px.Min.Y-b.Min.Y)+float64(px.Dy())/2)/h),
		Size:   geom.Sz(float64(px.Dx())/w, float64(px.Dy())/h),
	}
}
