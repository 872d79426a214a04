package view

import (
	"image"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/soocke/frame-annotator/ui/presenter"
	"github.com/soocke/frame-annotator/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Space around the canvas taken by the toolbar, slider, status bar and the
// rectangle list. Used to derive the canvas size from the window size.
const (
	chromeW = 300
	chromeH = 130
)

// Handlers are the user actions the root view forwards to presenters.
type Handlers struct {
	SelectVideo  func(name string)
	Step         func(delta int)
	Seek         func(x, w int)
	Canvas       CanvasHandlers
	Zoom         func(direction int)
	ResetView    func()
	ToggleDraw   func()
	CarryForward func()
	Save         func()
	Delete       func(id string)
	Resize       func(w, h int)
	Exit         func()
}

// RootView composes the top-level layout. It implements the view contracts
// of the presenters by delegating to its subviews.
type RootView struct {
	logger *slog.Logger
	width  int // canvas size
	height int

	// Subviews
	Canvas CanvasView
	Slider FrameSlider
	Rects  RectList
	Help   HelpWindow

	// Widgets
	VideoSelect *TComboboxWidget
	DrawButton  *TButtonWidget
	StatusLabel *TLabelWidget

	videos []string
}

var (
	_ presenter.NavigationView = (*RootView)(nil)
	_ presenter.CanvasView     = (*RootView)(nil)
	_ presenter.DrawModeView   = (*RootView)(nil)
	_ presenter.RectListView   = (*RootView)(nil)
	_ presenter.StatusView     = (*RootView)(nil)
	_ presenter.Alerter        = (*RootView)(nil)
)

func NewRootView(canvasW, canvasH int, logger *slog.Logger) *RootView {
	return &RootView{width: canvasW, height: canvasH, logger: logger}
}

// WindowSize is the initial window size fitting a canvas of the configured
// size plus the surrounding widgets.
func (rv *RootView) WindowSize() (w, h int) { return rv.width + chromeW, rv.height + chromeH }

// Build constructs the layout and binds h to the widgets and keyboard.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	p := theme.CurrentPalette()
	root := Frame(Background(p.AppBg))
	Grid(root, Row(0), Column(0), Sticky("nsew"))
	GridRowConfigure(App, 0, Weight(1))
	GridColumnConfigure(App, 0, Weight(1))

	// Row 0: toolbar
	bar := Frame(Background(p.AppBg))
	Grid(bar, In(root), Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.VideoSelect = TCombobox(Values([]string{"<none>"}), State("readonly"), Width(28))
	Grid(rv.VideoSelect, In(bar), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	Bind(rv.VideoSelect, "<<ComboboxSelected>>", Command(func() {
		idxStr := rv.VideoSelect.Current(nil)
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(rv.videos) {
			if rv.logger != nil {
				rv.logger.Error("video selection parse error", "index", idxStr, "error", err)
			}
			return
		}
		if h.SelectVideo != nil {
			h.SelectVideo(rv.videos[idx])
		}
	}))
	col := 1
	addButton := func(text, style string, fn func()) *TButtonWidget {
		b := TButton(Txt(text), Command(fn))
		if style != "" {
			b.Configure(Style(style))
		}
		Grid(b, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.2m"))
		col++
		return b
	}
	addButton("< Prev", "", func() { call1(h.Step, -1) })
	addButton("Next >", "", func() { call1(h.Step, 1) })
	rv.DrawButton = addButton("Draw: off", "", func() { call0(h.ToggleDraw) })
	addButton("Reset view", "", func() { call0(h.ResetView) })
	addButton("Carry forward", "", func() { call0(h.CarryForward) })
	addButton("Save", theme.StylePrimaryButton, func() { call0(h.Save) })
	addButton("Help", "", func() { rv.Help.OpenOrFocus() })
	addButton("Exit", theme.StyleDangerButton, func() { call0(h.Exit) })

	// Row 1: canvas and rectangle list
	rv.Canvas = NewCanvasView(root, 1, 0, rv.width, rv.height, h.Canvas)
	rv.Rects = NewRectList(root, 1, 1, h.Delete)
	GridRowConfigure(root.Window, 1, Weight(1))
	GridColumnConfigure(root.Window, 0, Weight(1))

	// Row 2: slider and frame readout
	rv.Slider = NewFrameSlider(root, 2, 0, rv.width, h.Seek)

	// Row 3: status bar
	rv.StatusLabel = TLabel(Txt(""), Style(theme.StyleStatusLabel), Anchor("w"))
	Grid(rv.StatusLabel, In(root), Row(3), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.2m"))

	rv.Help = NewHelpWindow()
	rv.bindKeys(h)
	Bind(App, "<Configure>", Command(func() { rv.onConfigure(h.Resize) }))
}

func (rv *RootView) bindKeys(h Handlers) {
	keys := []struct {
		seq string
		fn  func()
	}{
		{"<Left>", func() { call1(h.Step, -1) }},
		{"<Right>", func() { call1(h.Step, 1) }},
		{"<Shift-Left>", func() { call1(h.Step, -10) }},
		{"<Shift-Right>", func() { call1(h.Step, 10) }},
		{"<KeyPress-d>", func() { call0(h.ToggleDraw) }},
		{"<KeyPress-t>", func() { call0(h.CarryForward) }},
		{"<Control-s>", func() { call0(h.Save) }},
		{"<plus>", func() { call1(h.Zoom, 1) }},
		{"<equal>", func() { call1(h.Zoom, 1) }},
		{"<KP_Add>", func() { call1(h.Zoom, 1) }},
		{"<minus>", func() { call1(h.Zoom, -1) }},
		{"<KP_Subtract>", func() { call1(h.Zoom, -1) }},
		{"<Key-0>", func() { call0(h.ResetView) }},
		{"<F1>", func() { rv.Help.OpenOrFocus() }},
	}
	for _, k := range keys {
		Bind(App, k.seq, Command(k.fn))
	}
}

// onConfigure derives the canvas size from the toplevel geometry.
func (rv *RootView) onConfigure(resize func(w, h int)) {
	rect, ok := parseGeometry(WmGeometry(App))
	if !ok {
		return
	}
	w, h := rect.Dx()-chromeW, rect.Dy()-chromeH
	if w < 100 || h < 100 || (w == rv.width && h == rv.height) {
		return
	}
	rv.width, rv.height = w, h
	rv.Slider.SetWidth(w)
	if resize != nil {
		resize(w, h)
	}
}

// geomRe matches window geometry strings in the format "WIDTHxHEIGHT+X+Y".
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// parseGeometry parses a Tk geometry string into the window rectangle.
func parseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

// --- presenter view contracts ---

func (rv *RootView) SetVideos(names []string) {
	if rv == nil || rv.VideoSelect == nil {
		return
	}
	rv.videos = append(rv.videos[:0], names...)
	values := names
	if len(values) == 0 {
		values = []string{"<none>"}
	}
	rv.VideoSelect.Configure(Values(values))
}

func (rv *RootView) SetSelectedVideo(name string) {
	if rv == nil || rv.VideoSelect == nil {
		return
	}
	for i, v := range rv.videos {
		if v == name {
			rv.VideoSelect.Current(i)
			return
		}
	}
}

func (rv *RootView) SetSlider(value, max int) {
	if rv != nil && rv.Slider != nil {
		rv.Slider.SetSlider(value, max)
	}
}

func (rv *RootView) SetFrameLabel(text string) {
	if rv != nil && rv.Slider != nil {
		rv.Slider.SetFrameLabel(text)
	}
}

func (rv *RootView) ShowCanvas(img image.Image) {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.ShowCanvas(img)
	}
}

func (rv *RootView) SetDrawMode(on bool) {
	if rv == nil || rv.DrawButton == nil {
		return
	}
	if on {
		rv.DrawButton.Configure(Txt("Draw: on"), Style(theme.StyleToggleOn))
	} else {
		rv.DrawButton.Configure(Txt("Draw: off"), Style("TButton"))
	}
}

func (rv *RootView) SetRows(rows []presenter.RectRow) {
	if rv != nil && rv.Rects != nil {
		rv.Rects.SetRows(rows)
	}
}

func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// Alert shows a modal error box.
func (rv *RootView) Alert(title, message string) {
	if rv != nil && rv.logger != nil {
		rv.logger.Debug("alert", "title", title, "message", message)
	}
	MessageBox(Icon("error"), Title(title), Msg(message))
}

func call0(fn func()) {
	if fn != nil {
		fn()
	}
}

func call1(fn func(int), v int) {
	if fn != nil {
		fn(v)
	}
}
