package model

import (
	"github.com/soocke/frame-annotator/domain/geom"
)

// DragKind identifies what a pointer drag does.
type DragKind int

const (
	DragNone DragKind = iota
	DragDraw
	DragPan
)

// DragModel holds the gesture in progress, in canvas coordinates. The zero
// value means no drag and is usable. UI thread only.
type DragModel struct {
	kind  DragKind
	start geom.Point
	last  geom.Point
}

// Begin starts a drag at p, replacing any unfinished one.
func (m *DragModel) Begin(kind DragKind, p geom.Point) {
	if m == nil {
		return
	}
	m.kind, m.start, m.last = kind, p, p
}

// Move records p and returns the delta since the previous position.
func (m *DragModel) Move(p geom.Point) geom.Point {
	if m == nil || m.kind == DragNone {
		return geom.Point{}
	}
	d := p.Sub(m.last)
	m.last = p
	return d
}

// End finishes the drag and returns its kind and endpoints.
func (m *DragModel) End() (kind DragKind, start, end geom.Point) {
	if m == nil {
		return DragNone, geom.Point{}, geom.Point{}
	}
	kind, start, end = m.kind, m.start, m.last
	*m = DragModel{}
	return
}

// Kind returns the active drag kind.
func (m *DragModel) Kind() DragKind {
	if m == nil {
		return DragNone
	}
	return m.kind
}

// Draft returns the corners of a rectangle being drawn.
func (m *DragModel) Draft() (start, end geom.Point, ok bool) {
	if m == nil || m.kind != DragDraw {
		return geom.Point{}, geom.Point{}, false
	}
	return m.start, m.last, true
}
