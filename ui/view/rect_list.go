package view

import (
	"strconv"

	"github.com/soocke/frame-annotator/ui/images"
	"github.com/soocke/frame-annotator/ui/presenter"
	"github.com/soocke/frame-annotator/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const maxListedRects = 12

// RectList lists the rectangles of the displayed frame, each with a
// thumbnail, its id and a delete button.
type RectList interface {
	SetRows(rows []presenter.RectRow)
}

type rectList struct {
	box      *FrameWidget
	header   *LabelWidget
	onDelete func(id string)

	// Current rows, released on the next SetRows.
	destroy []func()
	photos  []*Img
}

// NewRectList creates the list panel in parent at (row, col).
func NewRectList(parent *FrameWidget, row, col int, onDelete func(id string)) RectList {
	p := theme.CurrentPalette()
	v := &rectList{onDelete: onDelete}
	v.box = Frame(Background(p.Surface), Borderwidth(1), Relief("groove"))
	Grid(v.box, In(parent), Row(row), Column(col), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	v.header = Label(Txt("Rectangles"), Anchor("w"), Background(p.Surface), Foreground(p.Text))
	Grid(v.header, In(v.box), Row(0), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	GridColumnConfigure(v.box.Window, 1, Weight(1))
	return v
}

func (v *rectList) SetRows(rows []presenter.RectRow) {
	if v == nil || v.box == nil {
		return
	}
	v.clear()
	p := theme.CurrentPalette()
	v.header.Configure(Txt(headerText(len(rows))))
	for i, r := range rows {
		if i == maxListedRects {
			more := Label(Txt("..."), Anchor("w"), Background(p.Surface), Foreground(p.TextMuted))
			Grid(more, In(v.box), Row(i+1), Column(0), Columnspan(3), Sticky("w"), Padx("0.4m"))
			v.destroy = append(v.destroy, func() { Destroy(more) })
			break
		}
		if r.Thumb != nil {
			photo := NewPhoto(Data(images.EncodePNG(r.Thumb)))
			thumb := Label(Image(photo), Borderwidth(1), Relief("sunken"))
			Grid(thumb, In(v.box), Row(i+1), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.2m"))
			v.destroy = append(v.destroy, func() { Destroy(thumb) })
			v.photos = append(v.photos, photo)
		}
		name := Label(Txt(r.Label), Anchor("w"), Background(p.Surface), Foreground(p.Text))
		Grid(name, In(v.box), Row(i+1), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
		id := r.ID
		del := TButton(Txt("Delete"), Style(theme.StyleDangerButton), Command(func() {
			if v.onDelete != nil {
				v.onDelete(id)
			}
		}))
		Grid(del, In(v.box), Row(i+1), Column(2), Sticky("e"), Padx("0.4m"), Pady("0.2m"))
		v.destroy = append(v.destroy, func() { Destroy(name) }, func() { Destroy(del) })
	}
}

func (v *rectList) clear() {
	for _, d := range v.destroy {
		d()
	}
	for _, p := range v.photos {
		p.Delete()
	}
	v.destroy, v.photos = v.destroy[:0], v.photos[:0]
}

func headerText(n int) string {
	if n == 0 {
		return "Rectangles: none"
	}
	return "Rectangles: " + strconv.Itoa(n)
}
