package view

import (
	"github.com/soocke/frame-annotator/ui/images"
	"github.com/soocke/frame-annotator/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

const sliderHeight = 22

// FrameSlider shows the frame slider and the "Frame: n / max" readout.
type FrameSlider interface {
	SetSlider(value, max int)
	SetFrameLabel(text string)
	SetWidth(w int)
}

type frameSlider struct {
	slider *LabelWidget
	photo  *Img
	frame  *TLabelWidget
	width  int
	value  int
	max    int
}

// NewFrameSlider creates the slider at (row, startCol) and the readout at
// (row, startCol+1) inside parent. Clicks and drags report the pointer x and
// the slider width to onSeek.
func NewFrameSlider(parent *FrameWidget, row, startCol, width int, onSeek func(x, w int)) FrameSlider {
	s := &frameSlider{width: width, value: 0, max: -1}
	s.photo = NewPhoto(Data(images.EncodePNG(images.RenderSlider(width, sliderHeight, 0, -1, theme.SliderStyle()))))
	s.slider = Label(Image(s.photo), Anchor("nw"), Borderwidth(0), Padx(0), Pady(0))
	s.frame = TLabel(Txt("Frame: - / -"), Style(theme.StyleFrameLabel), Width(18))
	Grid(s.slider, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.4m"), Pady("0.2m"))
	Grid(s.frame, In(parent), Row(row), Column(startCol+1), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	seek := func(e *Event) {
		if onSeek != nil {
			onSeek(e.X, s.width)
		}
	}
	Bind(s.slider, "<ButtonPress-1>", Command(seek))
	Bind(s.slider, "<B1-Motion>", Command(seek))
	return s
}

// SetSlider redraws the slider; a negative max disables it.
func (s *frameSlider) SetSlider(value, max int) {
	if s == nil || s.slider == nil || (value == s.value && max == s.max) {
		return
	}
	s.value, s.max = value, max
	img := images.RenderSlider(s.width, sliderHeight, value, max, theme.SliderStyle())
	if s.photo != nil {
		s.photo.Delete()
	}
	s.photo = NewPhoto(Data(images.EncodePNG(img)))
	s.slider.Configure(Image(s.photo))
}

func (s *frameSlider) SetFrameLabel(text string) {
	if s == nil || s.frame == nil {
		return
	}
	s.frame.Configure(Txt(text))
}

// SetWidth redraws the slider at the new width.
func (s *frameSlider) SetWidth(w int) {
	if s == nil || w <= 0 || w == s.width {
		return
	}
	s.width = w
	value, max := s.value, s.max
	s.value, s.max = 0, -2 // force a redraw
	s.SetSlider(value, max)
}
