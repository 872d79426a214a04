// Package theme holds the light/dark mode switch and the ttk styles built
// from the active palette.
package theme

import (
	"github.com/soocke/frame-annotator/ui/images"
	"github.com/soocke/frame-annotator/ui/palette"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ttk style names applied by the views.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleToggleOn      = "toggleon.TButton"
	StyleStatusLabel   = "status.TLabel"
	StyleFrameLabel    = "frame.TLabel"
)

var active = palette.Light

// SetDark selects the dark or light palette and restyles the widgets.
func SetDark(dark bool) {
	if dark {
		active = palette.Dark
	} else {
		active = palette.Light
	}
	configure(active)
}

// CurrentPalette returns the active palette.
func CurrentPalette() palette.Palette { return active }

// CanvasStyle returns the canvas colors of the active palette.
func CanvasStyle() images.Style { return active.CanvasStyle() }

// SliderStyle returns the slider colors of the active palette.
func SliderStyle() images.SliderStyle { return active.SliderStyle() }

func configure(p palette.Palette) {
	_ = ActivateTheme("azure light")
	App.Configure(Background(p.AppBg))

	button := func(name, bg, relief string) {
		StyleConfigure(name, Background(bg), Foreground("white"), Padding("4p 2p"), Borderwidth(1), Relief(relief))
	}
	button(StylePrimaryButton, p.Primary, "ridge")
	button(StyleDangerButton, p.Danger, "ridge")
	button(StyleToggleOn, p.Accent, "sunken")

	StyleConfigure(StyleStatusLabel, Foreground(p.TextMuted), Background(p.AppBg), Padding("4p 2p"))
	StyleConfigure(StyleFrameLabel, Foreground(p.Text), Background(p.Surface), Padding("4p 2p"), Borderwidth(1), Relief("groove"))
}
