package model

import (
	"image"
	"log/slog"
	"testing"
	"time"

	"github.com/soocke/frame-annotator/domain/geom"
	"github.com/soocke/frame-annotator/domain/viewport"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestSession_DirtyFlag(t *testing.T) {
	s := NewSession(200, 100, viewport.Options{}, discardLogger)
	if !s.TakeDirty() {
		t.Fatalf("new session should request an initial draw")
	}
	if s.TakeDirty() {
		t.Fatalf("dirty flag should clear after TakeDirty")
	}
	s.MarkDirty()
	if !s.TakeDirty() {
		t.Fatalf("MarkDirty not observed")
	}
}

func TestSession_CanEditOnlyOnTargetFrame(t *testing.T) {
	s := NewSession(200, 100, viewport.Options{}, discardLogger)
	if s.CanEdit() || s.CurrentFrame() != -1 {
		t.Fatalf("no video: editing must be disabled")
	}
	setup, _ := s.Nav.SelectVideo("a.mp4")
	first, err := s.Nav.VideoReady(setup, 10)
	if err != nil {
		t.Fatal(err)
	}
	if s.CanEdit() {
		t.Fatalf("editing enabled before the frame arrived")
	}
	s.Frame.Show(first, image.NewRGBA(image.Rect(0, 0, 40, 30)), 100, time.Now())
	if !s.CanEdit() {
		t.Fatalf("editing should be enabled on the displayed target frame")
	}
	if got := s.ImageSize(); got != geom.Sz(40, 30) {
		t.Fatalf("unexpected image size %v", got)
	}
	s.Nav.SetFrame(4)
	if s.CanEdit() {
		t.Fatalf("editing must wait for frame 4 to be displayed")
	}
}

func TestDrawModel_Toggle(t *testing.T) {
	var m DrawModel
	if m.Enabled() {
		t.Fatalf("zero value should be off")
	}
	if !m.Toggle() || !m.Enabled() {
		t.Fatalf("toggle should turn draw mode on")
	}
	if m.SetEnabled(true) {
		t.Fatalf("setting the same value should report no change")
	}
	if !m.SetEnabled(false) {
		t.Fatalf("change not reported")
	}
	var nilModel *DrawModel
	if nilModel.Enabled() || nilModel.Toggle() {
		t.Fatalf("nil model should be inert")
	}
}

func TestDragModel_Lifecycle(t *testing.T) {
	var m DragModel
	if _, _, ok := m.Draft(); ok {
		t.Fatalf("no draft expected before a drag")
	}
	m.Begin(DragDraw, geom.Pt(10, 10))
	if d := m.Move(geom.Pt(15, 12)); d != geom.Pt(5, 2) {
		t.Fatalf("unexpected delta %v", d)
	}
	if d := m.Move(geom.Pt(20, 20)); d != geom.Pt(5, 8) {
		t.Fatalf("delta should be relative to the last move, got %v", d)
	}
	start, end, ok := m.Draft()
	if !ok || start != geom.Pt(10, 10) || end != geom.Pt(20, 20) {
		t.Fatalf("unexpected draft %v %v %v", start, end, ok)
	}
	kind, _, _ := m.End()
	if kind != DragDraw || m.Kind() != DragNone {
		t.Fatalf("end should report the kind and reset the model")
	}
	if d := m.Move(geom.Pt(1, 1)); d != (geom.Point{}) {
		t.Fatalf("move without a drag should be ignored")
	}
}

func TestFrameModel_ShowAndClear(t *testing.T) {
	var m FrameModel
	m.SetLoading(true)
	if !m.Loading() || m.Image() != nil {
		t.Fatalf("unexpected initial state")
	}
	at := time.Unix(100, 0)
	m.Show(m.Shown(), image.NewRGBA(image.Rect(0, 0, 1, 1)), 42, at)
	if m.Loading() {
		t.Fatalf("show should clear loading")
	}
	if n, ts := m.Info(); n != 42 || !ts.Equal(at) {
		t.Fatalf("unexpected info %d %v", n, ts)
	}
	m.Clear()
	if m.Image() != nil {
		t.Fatalf("clear kept the image")
	}
}

func TestSession_GalleryIsViewOnly(t *testing.T) {
	s := NewSession(200, 100, viewport.Options{}, discardLogger)
	setup, _ := s.Nav.SelectVideo(GalleryVideo)
	first, _ := s.Nav.VideoReady(setup, 3)
	s.Frame.Show(first, image.NewRGBA(image.Rect(0, 0, 4, 4)), 10, time.Now())
	if s.CanEdit() {
		t.Fatalf("gallery frames must not be editable")
	}
}
