package viewport

import (
	"math"

	"golang.org/x/image/math/f64"

	"github.com/soocke/frame-annotator/domain/geom"
)

const (
	// DefaultZoomIntensity is the exponent applied per wheel notch.
	DefaultZoomIntensity = 0.1
	defaultMinScale      = 0.02
	defaultMaxScale      = 64
)

// Viewport owns the zoom scale and pan offset that map image pixels onto the
// canvas:
//
//	screen = (image - imageCenter) * scale + offset + screenCenter
//
// Not safe for concurrent use; it lives on the UI thread.
type Viewport struct {
	scale     float64
	offset    geom.Point
	canvas    geom.Size
	image     geom.Size
	intensity float64
	minScale  float64
	maxScale  float64
}

// Options tunes zoom behaviour. Zero fields fall back to defaults.
type Options struct {
	ZoomIntensity float64
	MinScale      float64
	MaxScale      float64
}

// New returns a viewport with scale 1 and no offset for the given canvas.
func New(canvasW, canvasH float64, opts Options) *Viewport {
	v := &Viewport{
		scale:     1,
		canvas:    geom.Sz(canvasW, canvasH),
		intensity: opts.ZoomIntensity,
		minScale:  opts.MinScale,
		maxScale:  opts.MaxScale,
	}
	if v.intensity <= 0 {
		v.intensity = DefaultZoomIntensity
	}
	if v.minScale <= 0 {
		v.minScale = defaultMinScale
	}
	if v.maxScale <= v.minScale {
		v.maxScale = math.Max(defaultMaxScale, v.minScale*2)
	}
	return v
}

func (v *Viewport) Scale() float64        { return v.scale }
func (v *Viewport) Offset() geom.Point    { return v.offset }
func (v *Viewport) CanvasSize() geom.Size { return v.canvas }
func (v *Viewport) ImageSize() geom.Size  { return v.image }

// SetImageSize records the dimensions of the displayed frame. Scale and
// offset are left alone.
func (v *Viewport) SetImageSize(w, h float64) { v.image = geom.Sz(w, h) }

// Resize updates the canvas extent. Framing is kept: scale and offset do not
// change, so the image stays centred relative to the new canvas.
func (v *Viewport) Resize(w, h float64) { v.canvas = geom.Sz(w, h) }

// Reset restores scale 1 and zero offset.
func (v *Viewport) Reset() {
	v.scale = 1
	v.offset = geom.Point{}
}

// ZoomAt multiplies the scale by exp(direction*intensity) keeping the image
// point under screenPt fixed on screen. Positive direction zooms in.
func (v *Viewport) ZoomAt(screenPt geom.Point, direction int) {
	if direction == 0 {
		return
	}
	dir := 1.0
	if direction < 0 {
		dir = -1
	}
	next := v.scale * math.Exp(dir*v.intensity)
	next = math.Min(math.Max(next, v.minScale), v.maxScale)
	// The effective factor may differ from exp(±intensity) after clamping.
	zoom := next / v.scale
	if zoom == 1 {
		return
	}
	rel := screenPt.Sub(v.canvas.Center()).Sub(v.offset)
	v.offset = v.offset.Add(rel.Mul(1 - zoom))
	v.scale = next
}

// Pan shifts the image by delta screen pixels.
func (v *Viewport) Pan(delta geom.Point) { v.offset = v.offset.Add(delta) }

// ImageToScreen maps an image pixel position to canvas coordinates.
func (v *Viewport) ImageToScreen(p geom.Point) geom.Point {
	return p.Sub(v.image.Center()).Mul(v.scale).Add(v.offset).Add(v.canvas.Center())
}

// ScreenToImage is the exact inverse of ImageToScreen.
func (v *Viewport) ScreenToImage(p geom.Point) geom.Point {
	return p.Sub(v.canvas.Center()).Sub(v.offset).Div(v.scale).Add(v.image.Center())
}

// Transform returns the image-to-screen affine matrix in the row-major form
// used by golang.org/x/image/draw.
func (v *Viewport) Transform() f64.Aff3 {
	origin := v.ImageToScreen(geom.Point{})
	return f64.Aff3{
		v.scale, 0, origin.X,
		0, v.scale, origin.Y,
	}
}
