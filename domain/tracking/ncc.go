package tracking

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// grayPlane stores luminance values of an image region and their summed-area
// tables (integral images). The integrals allow O(1) window sum and variance
// queries while sliding a template over the plane.
type grayPlane struct {
	gray       []float64 // per pixel luminance (length W*H)
	integral   []float64 // summed-area table of luminance
	integralSq []float64 // summed-area table of luminance squared
	W, H       int
}

// templateStats caches luminance and summary statistics of a template.
type templateStats struct {
	gray  []float64
	W, H  int
	meanT float64
	stdT  float64
}

// luminance crops r out of img and returns the region as an NRGBA-backed
// luminance slice, row-major.
func luminance(img image.Image, r image.Rectangle) ([]float64, int, int) {
	crop := imaging.Crop(img, r)
	w, h := crop.Rect.Dx(), crop.Rect.Dy()
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := crop.Pix[y*crop.Stride : y*crop.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			if p[3] == 0 {
				continue
			}
			gray[y*w+x] = 0.2126*float64(p[0]) + 0.7152*float64(p[1]) + 0.0722*float64(p[2])
		}
	}
	return gray, w, h
}

// newGrayPlane computes the luminance plane of img restricted to r.
func newGrayPlane(img image.Image, r image.Rectangle) *grayPlane {
	gray, W, H := luminance(img, r)
	p := &grayPlane{
		gray:       gray,
		integral:   make([]float64, W*H),
		integralSq: make([]float64, W*H),
		W:          W,
		H:          H,
	}
	for y := 0; y < H; y++ {
		var rowSum, rowSum2 float64
		for x := 0; x < W; x++ {
			off := y*W + x
			g := gray[off]
			rowSum += g
			rowSum2 += g * g
			if y == 0 {
				p.integral[off] = rowSum
				p.integralSq[off] = rowSum2
			} else {
				p.integral[off] = p.integral[off-W] + rowSum
				p.integralSq[off] = p.integralSq[off-W] + rowSum2
			}
		}
	}
	return p
}

// newTemplate returns the statistics of tmpl resized to w x h. Resizing goes
// through imaging so scaled templates are filtered, not decimated.
func newTemplate(tmpl image.Image, w, h int) *templateStats {
	if w < 2 || h < 2 {
		return nil
	}
	src := tmpl
	if b := tmpl.Bounds(); b.Dx() != w || b.Dy() != h {
		src = imaging.Resize(tmpl, w, h, imaging.Linear)
	}
	gray, gw, gh := luminance(src, src.Bounds())
	var sumT, sumT2 float64
	for _, g := range gray {
		sumT += g
		sumT2 += g * g
	}
	n := float64(gw * gh)
	meanT := sumT / n
	varT := (sumT2 - sumT*sumT/n) / n
	stdT := 0.0
	if varT > 0 {
		stdT = math.Sqrt(varT)
	}
	return &templateStats{gray: gray, W: gw, H: gh, meanT: meanT, stdT: stdT}
}

// integralSum returns the inclusive sum over rectangle [x0..x1] x [y0..y1]
// from an integral image stored in row-major order with width W.
func integralSum(I []float64, W int, x0, y0, x1, y1 int) float64 {
	if x0 > x1 || y0 > y1 {
		return 0
	}
	at := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return I[y*W+x]
	}
	return at(x1, y1) - at(x0-1, y1) - at(x1, y0-1) + at(x0-1, y0-1)
}

// score returns the normalized cross-correlation of t placed at (x, y) on p,
// or -1 when either window is flat.
func (p *grayPlane) score(t *templateStats, x, y int) float64 {
	w, h := t.W, t.H
	n := float64(w * h)
	sumF := integralSum(p.integral, p.W, x, y, x+w-1, y+h-1)
	sumF2 := integralSum(p.integralSq, p.W, x, y, x+w-1, y+h-1)
	meanF := sumF / n
	varF := (sumF2 - sumF*sumF/n) / n
	if varF <= 1e-9 || t.stdT <= 1e-9 {
		return -1
	}
	var sumFT float64
	for ty := 0; ty < h; ty++ {
		frow := p.gray[(y+ty)*p.W+x : (y+ty)*p.W+x+w]
		trow := t.gray[ty*w : ty*w+w]
		for i, f := range frow {
			sumFT += f * trow[i]
		}
	}
	return (sumFT - n*meanF*t.meanT) / (n * math.Sqrt(varF) * t.stdT)
}

// match slides t over p and returns the best top-left position and score.
// With stride > 1 a coarse scan is followed by a full-resolution pass around
// the coarse winner.
func (p *grayPlane) match(t *templateStats, stride int) (bestX, bestY int, bestScore float64) {
	bestScore = -1
	if t == nil || p.W < t.W || p.H < t.H {
		return 0, 0, bestScore
	}
	if stride <= 0 {
		stride = 1
	}
	scan := func(minX, minY, maxX, maxY, step int) {
		for y := minY; y <= maxY; y += step {
			for x := minX; x <= maxX; x += step {
				if s := p.score(t, x, y); s > bestScore {
					bestScore, bestX, bestY = s, x, y
				}
			}
		}
	}
	maxX, maxY := p.W-t.W, p.H-t.H
	scan(0, 0, maxX, maxY, stride)
	if stride > 1 {
		scan(max(0, bestX-stride), max(0, bestY-stride), min(maxX, bestX+stride), min(maxY, bestY+stride), 1)
	}
	return bestX, bestY, bestScore
}
