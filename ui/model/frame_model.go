package model

import (
	"image"
	"time"

	"github.com/soocke/frame-annotator/domain/navigation"
)

// FrameModel holds the frame on display and whether a newer one is being
// fetched. The zero value shows nothing and is usable. UI thread only.
type FrameModel struct {
	img      image.Image
	shown    navigation.FrameRequest
	bytes    int
	loadedAt time.Time
	loading  bool
}

// Show makes img the displayed frame for req.
func (m *FrameModel) Show(req navigation.FrameRequest, img image.Image, size int, at time.Time) {
	if m == nil {
		return
	}
	m.img, m.shown, m.bytes, m.loadedAt = img, req, size, at
	m.loading = false
}

// SetLoading marks a fetch as outstanding.
func (m *FrameModel) SetLoading(b bool) {
	if m == nil {
		return
	}
	m.loading = b
}

// Clear drops the displayed frame, e.g. when another video is selected.
func (m *FrameModel) Clear() {
	if m == nil {
		return
	}
	*m = FrameModel{}
}

// Image returns the displayed frame or nil.
func (m *FrameModel) Image() image.Image {
	if m == nil {
		return nil
	}
	return m.img
}

// Shown returns the request the displayed frame answered.
func (m *FrameModel) Shown() navigation.FrameRequest {
	if m == nil {
		return navigation.FrameRequest{}
	}
	return m.shown
}

// Loading reports whether a fetch is outstanding.
func (m *FrameModel) Loading() bool { return m != nil && m.loading }

// Info returns the encoded size and fetch time of the displayed frame.
func (m *FrameModel) Info() (bytes int, loadedAt time.Time) {
	if m == nil {
		return 0, time.Time{}
	}
	return m.bytes, m.loadedAt
}
