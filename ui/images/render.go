package images

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// Style holds the colors used when compositing the canvas.
type Style struct {
	Background color.RGBA
	Box        color.RGBA
	Draft      color.RGBA
	LabelText  color.RGBA
	Message    color.RGBA
}

// DefaultStyle returns the light palette.
func DefaultStyle() Style {
	return Style{
		Background: color.RGBA{0x1e, 0x29, 0x3b, 0xff},
		Box:        color.RGBA{0x10, 0xb9, 0x81, 0xff},
		Draft:      color.RGBA{0xf5, 0x9e, 0x0b, 0xff},
		LabelText:  color.RGBA{0xff, 0xff, 0xff, 0xff},
		Message:    color.RGBA{0x94, 0xa3, 0xb8, 0xff},
	}
}

// Box is a rectangle outline in canvas pixels.
type Box struct {
	Min, Max image.Point
	Label    string
}

// Scene is everything needed to draw one canvas image.
type Scene struct {
	Width, Height int
	Frame         image.Image // nil draws Message instead
	Transform     f64.Aff3    // frame pixel -> canvas pixel
	Boxes         []Box
	Draft         *Box
	Message       string
	Style         Style
}

const (
	outline = 2
	// Above this zoom the frame is drawn with nearest-neighbour sampling so
	// individual pixels stay sharp for precise boxes.
	nearestAbove = 2.0
)

// Render composites the scene into an RGBA image of Width x Height. The image
// may come from the pool; pass it to Recycle once it is no longer used.
func Render(s Scene) *image.RGBA {
	w, h := max(s.Width, 1), max(s.Height, 1)
	dst := acquireCanvas(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(s.Style.Background), image.Point{}, draw.Src)

	if s.Frame != nil {
		var interp draw.Interpolator = draw.ApproxBiLinear
		if s.Transform[0] >= nearestAbove {
			interp = draw.NearestNeighbor
		}
		interp.Transform(dst, s.Transform, s.Frame, s.Frame.Bounds(), draw.Over, nil)
	} else if s.Message != "" {
		drawCenteredText(dst, s.Message, s.Style.Message)
	}

	for _, b := range s.Boxes {
		drawBox(dst, b, s.Style.Box, s.Style.LabelText)
	}
	if s.Draft != nil {
		drawBox(dst, *s.Draft, s.Style.Draft, s.Style.LabelText)
	}
	return dst
}

// Placeholder returns a blank frame with msg centered on it.
func Placeholder(w, h int, msg string, st Style) *image.RGBA {
	return Render(Scene{Width: w, Height: h, Message: msg, Style: st})
}

func drawBox(dst *image.RGBA, b Box, c, text color.RGBA) {
	r := image.Rectangle{Min: b.Min, Max: b.Max}.Canon()
	fill := func(rr image.Rectangle) {
		rr = rr.Intersect(dst.Bounds())
		if !rr.Empty() {
			draw.Draw(dst, rr, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	fill(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+outline))
	fill(image.Rect(r.Min.X, r.Max.Y-outline, r.Max.X, r.Max.Y))
	fill(image.Rect(r.Min.X, r.Min.Y, r.Min.X+outline, r.Max.Y))
	fill(image.Rect(r.Max.X-outline, r.Min.Y, r.Max.X, r.Max.Y))
	if b.Label == "" {
		return
	}
	face := basicfont.Face7x13
	tw := font.MeasureString(face, b.Label).Ceil()
	lh := face.Metrics().Height.Ceil()
	// Label tab sits above the box, or inside it at the top edge.
	top := r.Min.Y - lh - 2
	if top < 0 {
		top = r.Min.Y
	}
	tab := image.Rect(r.Min.X, top, r.Min.X+tw+4, top+lh+2)
	fill(tab)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(text),
		Face: face,
		Dot:  fixed.P(tab.Min.X+2, tab.Min.Y+1+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(b.Label)
}

func drawCenteredText(dst *image.RGBA, msg string, c color.RGBA) {
	face := basicfont.Face7x13
	tw := font.MeasureString(face, msg).Ceil()
	b := dst.Bounds()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P((b.Dx()-tw)/2, b.Dy()/2+face.Metrics().Ascent.Ceil()/2),
	}
	d.DrawString(msg)
}
