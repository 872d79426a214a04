package images

import (
	"image"
	"sync"
)

// Canvas images are re-rendered on every change and are as large as the
// window, so their pixel buffers are pooled. Render takes a buffer from the
// pool; the view hands it back with Recycle once the image is encoded into a
// Tk photo. Images that are never recycled are simply garbage collected.

var canvasPool sync.Pool // stores *image.RGBA

// acquireCanvas returns an RGBA image sized to rect whose pixels are
// undefined. Pix length is exactly rect area * 4 and Stride is width*4.
func acquireCanvas(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := canvasPool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		img = &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	} else {
		img.Stride = w * 4
		img.Rect = rect
		img.Pix = img.Pix[:needed]
	}
	return img
}

// Recycle returns a rendered image to the pool. The caller must not touch
// img afterwards. Images not produced by Render are ignored.
func Recycle(img image.Image) {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba == nil || rgba.Pix == nil || rgba.Rect.Min != (image.Point{}) {
		return
	}
	canvasPool.Put(rgba)
}
