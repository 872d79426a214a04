package images

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/geom"
)

// CropRect converts a normalized rectangle into pixel bounds of frame.
// It clamps the rectangle to frame bounds and guarantees at least 1x1.
func CropRect(frame image.Rectangle, r annotation.Rectangle) image.Rectangle {
	size := geom.Sz(float64(frame.Dx()), float64(frame.Dy()))
	tl, br := r.Bounds(size)
	x0, y0 := int(math.Floor(tl.X)), int(math.Floor(tl.Y))
	x1, y1 := int(math.Ceil(br.X)), int(math.Ceil(br.Y))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	rect := image.Rect(x0, y0, x1, y1).Add(frame.Min)
	rect = rect.Intersect(frame)
	if rect.Empty() {
		// Entirely outside: fall back to the nearest corner pixel.
		x := min(max(x0, 0), frame.Dx()-1) + frame.Min.X
		y := min(max(y0, 0), frame.Dy()-1) + frame.Min.Y
		rect = image.Rect(x, y, x+1, y+1)
	}
	return rect
}

// Thumbnail crops the rectangle out of frame and scales it to fit within a
// maxSide square. Returns the thumbnail (always *image.NRGBA) and the crop
// rectangle relative to frame.
func Thumbnail(frame image.Image, r annotation.Rectangle, maxSide int) (*image.NRGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	if frame.Bounds().Empty() {
		return nil, image.Rectangle{}, errors.New("empty frame")
	}
	if maxSide < 1 {
		maxSide = 1
	}
	rect := CropRect(frame.Bounds(), r)
	crop := imaging.Crop(frame, rect)
	if crop.Bounds().Dx() <= maxSide && crop.Bounds().Dy() <= maxSide {
		return crop, rect, nil
	}
	return imaging.Fit(crop, maxSide, maxSide, imaging.Box), rect, nil
}
