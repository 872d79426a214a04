package images

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// SliderStyle holds the slider colors.
type SliderStyle struct {
	Background color.RGBA
	Track      color.RGBA
	Fill       color.RGBA
	Knob       color.RGBA
}

// DefaultSliderStyle returns the light palette.
func DefaultSliderStyle() SliderStyle {
	return SliderStyle{
		Background: color.RGBA{0xf7, 0xf9, 0xfb, 0xff},
		Track:      color.RGBA{0xd0, 0xd7, 0xde, 0xff},
		Fill:       color.RGBA{0x25, 0x63, 0xeb, 0xff},
		Knob:       color.RGBA{0x1d, 0x4e, 0xd8, 0xff},
	}
}

const (
	sliderMargin = 8
	trackHeight  = 4
	knobWidth    = 8
)

// RenderSlider draws a horizontal frame slider of w x h for value in
// [0, maxValue]. A negative maxValue draws a disabled (empty) track.
func RenderSlider(w, h, value, maxValue int, st SliderStyle) *image.RGBA {
	w, h = max(w, 2*sliderMargin+1), max(h, trackHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(st.Background), image.Point{}, draw.Src)

	cy := h / 2
	track := image.Rect(sliderMargin, cy-trackHeight/2, w-sliderMargin, cy+trackHeight/2)
	draw.Draw(dst, track, image.NewUniform(st.Track), image.Point{}, draw.Src)
	if maxValue < 0 {
		return dst
	}
	x := SliderX(value, w, maxValue)
	draw.Draw(dst, image.Rect(track.Min.X, track.Min.Y, x, track.Max.Y), image.NewUniform(st.Fill), image.Point{}, draw.Src)
	knob := image.Rect(x-knobWidth/2, 1, x+knobWidth/2, h-1).Intersect(dst.Bounds())
	draw.Draw(dst, knob, image.NewUniform(st.Knob), image.Point{}, draw.Src)
	return dst
}

// SliderX returns the knob center for value.
func SliderX(value, w, maxValue int) int {
	span := w - 2*sliderMargin
	if maxValue <= 0 || span <= 0 {
		return sliderMargin
	}
	value = min(max(value, 0), maxValue)
	return sliderMargin + int(math.Round(float64(value)*float64(span)/float64(maxValue)))
}

// SliderValue maps a click at x on a slider of width w back to a value in
// [0, maxValue]. It returns -1 when the slider is disabled.
func SliderValue(x, w, maxValue int) int {
	if maxValue < 0 {
		return -1
	}
	span := w - 2*sliderMargin
	if maxValue == 0 || span <= 0 {
		return 0
	}
	f := float64(x-sliderMargin) / float64(span)
	f = math.Max(0, math.Min(1, f))
	return int(math.Round(f * float64(maxValue)))
}
