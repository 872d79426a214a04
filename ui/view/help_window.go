package view

import (
	"github.com/soocke/frame-annotator/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// shortcuts lists the key bindings shown in the help window, in order.
var shortcuts = [][2]string{
	{"Left / Right", "previous / next frame"},
	{"Shift+Left / Shift+Right", "10 frames back / forward"},
	{"d", "toggle draw mode"},
	{"t", "carry the previous frame's rectangles forward"},
	{"Ctrl+S", "save the displayed frame"},
	{"+ / - or wheel", "zoom at the pointer"},
	{"0", "reset zoom and pan"},
	{"Left drag", "draw a rectangle (draw mode) or pan"},
	{"Middle drag", "pan"},
	{"F1", "this window"},
}

// HelpWindow is a small toplevel listing the keyboard and mouse bindings.
type HelpWindow interface {
	OpenOrFocus()
}

type helpWindow struct {
	win *ToplevelWidget
}

func NewHelpWindow() HelpWindow { return &helpWindow{} }

func (v *helpWindow) OpenOrFocus() {
	if v.win != nil {
		WmAttributes(v.win.Window, "-topmost", 1)
		return
	}
	p := theme.CurrentPalette()
	win := App.Toplevel(Borderwidth(2), Background(p.Surface))
	win.WmTitle("Shortcuts")
	v.win = win
	WmAttributes(win.Window, "-topmost", 1)
	for i, s := range shortcuts {
		key := win.Label(Txt(s[0]), Anchor("w"), Background(p.Surface), Foreground(p.Primary))
		Grid(key, Row(i), Column(0), Sticky("w"), Padx("1m"), Pady("0.2m"))
		what := win.Label(Txt(s[1]), Anchor("w"), Background(p.Surface), Foreground(p.Text))
		Grid(what, Row(i), Column(1), Sticky("w"), Padx("1m"), Pady("0.2m"))
	}
	closeBtn := win.Button(Txt("Close [Esc]"), Command(v.close))
	Grid(closeBtn, Row(len(shortcuts)), Column(0), Columnspan(2), Sticky("we"), Padx("1m"), Pady("1m"))
	Bind(win, "<Return>", Command(v.close))
	Bind(win, "<Escape>", Command(v.close))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.close)
}

func (v *helpWindow) close() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}
