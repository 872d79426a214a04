package model

import (
	"log/slog"

	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/geom"
	"github.com/soocke/frame-annotator/domain/navigation"
	"github.com/soocke/frame-annotator/domain/viewport"
)

// GalleryVideo is the selector entry that browses the backend's image
// gallery instead of a video. Gallery frames are view-only.
const GalleryVideo = "[images]"

// Session is the whole state of one annotation session. It is owned by the
// Tk thread: presenters mutate it from input callbacks and the update loop,
// and network work only ever sees copies.
type Session struct {
	View   *viewport.Viewport
	Store  *annotation.Store
	Nav    *navigation.Navigator
	Draw   DrawModel
	Drag   DragModel
	Frame  FrameModel
	Videos []string

	// ResetViewOnFrameChange resets zoom and pan on every frame change.
	// Selecting another video always resets.
	ResetViewOnFrameChange bool

	dirty bool
}

// NewSession returns a session with no video and an empty canvas of w x h.
func NewSession(w, h float64, opts viewport.Options, logger *slog.Logger) *Session {
	return &Session{
		View:  viewport.New(w, h, opts),
		Store: annotation.NewStore(),
		Nav:   navigation.New(logger),
		dirty: true,
	}
}

// MarkDirty requests a redraw on the next tick.
func (s *Session) MarkDirty() {
	if s != nil {
		s.dirty = true
	}
}

// TakeDirty reports and clears the redraw request.
func (s *Session) TakeDirty() bool {
	if s == nil {
		return false
	}
	d := s.dirty
	s.dirty = false
	return d
}

// ImageSize returns the pixel size of the displayed frame.
func (s *Session) ImageSize() geom.Size {
	img := s.Frame.Image()
	if img == nil {
		return geom.Size{}
	}
	b := img.Bounds()
	return geom.Sz(float64(b.Dx()), float64(b.Dy()))
}

// CurrentFrame returns the navigation target, or -1 without a video.
func (s *Session) CurrentFrame() int {
	if s.Nav.State() != navigation.StateLoaded {
		return -1
	}
	return s.Nav.Current()
}

// CanEdit reports whether rectangles can be drawn: a video is loaded and the
// frame on screen is the navigation target.
func (s *Session) CanEdit() bool {
	return s.Nav.State() == navigation.StateLoaded &&
		s.Nav.Video() != GalleryVideo &&
		s.Frame.Image() != nil &&
		s.Nav.Accept(s.Frame.Shown())
}
