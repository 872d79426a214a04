// Package palette defines the annotator colors. Tk widgets take them as hex
// strings; the Go-rendered canvas and slider get the same colors as
// color.RGBA through CanvasStyle and SliderStyle.
package palette

import (
	"image/color"
	"strconv"

	"github.com/soocke/frame-annotator/ui/images"
)

// Palette is one color scheme, all values "#rrggbb".
type Palette struct {
	AppBg     string // window and toolbar
	Surface   string // rectangle list, help window
	Primary   string // save button, shortcut keys
	Danger    string // delete and exit buttons
	Accent    string // armed draw toggle, committed boxes
	Draft     string // box being drawn
	Text      string
	TextMuted string // status bar
	Canvas    string // area around the frame
	Track     string // empty slider track
}

// Light is the default scheme.
var Light = Palette{
	AppBg:     "#eef2f6",
	Surface:   "#ffffff",
	Primary:   "#1f6feb",
	Danger:    "#cf222e",
	Accent:    "#1a7f37",
	Draft:     "#d97706",
	Text:      "#1f2328",
	TextMuted: "#59636e",
	Canvas:    "#24292f",
	Track:     "#c8d1da",
}

// Dark is used when dark_mode is set.
var Dark = Palette{
	AppBg:     "#0d1117",
	Surface:   "#161b22",
	Primary:   "#4493f8",
	Danger:    "#f85149",
	Accent:    "#3fb950",
	Draft:     "#f0b429",
	Text:      "#e6edf3",
	TextMuted: "#8d96a0",
	Canvas:    "#010409",
	Track:     "#30363d",
}

// RGBA parses "#rrggbb". Malformed values give opaque black.
func RGBA(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{A: 0xff}
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// CanvasStyle returns the canvas colors of p.
func (p Palette) CanvasStyle() images.Style {
	return images.Style{
		Background: RGBA(p.Canvas),
		Box:        RGBA(p.Accent),
		Draft:      RGBA(p.Draft),
		LabelText:  color.RGBA{0xff, 0xff, 0xff, 0xff},
		Message:    RGBA(p.TextMuted),
	}
}

// SliderStyle returns the frame slider colors of p.
func (p Palette) SliderStyle() images.SliderStyle {
	return images.SliderStyle{
		Background: RGBA(p.AppBg),
		Track:      RGBA(p.Track),
		Fill:       RGBA(p.Primary),
		Knob:       RGBA(p.Text),
	}
}
