package presenter

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/navigation"
	"github.com/soocke/frame-annotator/ui/images"
	"github.com/soocke/frame-annotator/ui/model"
)

const thumbSide = 48

// AnnotationRequester queues saves and rectangle tracking.
type AnnotationRequester interface {
	Save(frame int, rects annotation.Rectangles)
	Track(req navigation.FrameRequest, from int, rects annotation.Rectangles, cur image.Image)
}

// RectRow is one entry of the rectangle list.
type RectRow struct {
	ID    string
	Label string
	Thumb image.Image // nil when the frame is not on screen
}

// RectListView shows the rectangles of the current frame.
type RectListView interface {
	SetRows(rows []RectRow)
}

// AnnotationPresenter owns the rectangle list and the save workflow.
type AnnotationPresenter struct {
	sess   *model.Session
	req    AnnotationRequester
	list   RectListView
	alert  Alerter
	logger *slog.Logger

	signature string
	saving    int
	tracking  bool // the worker keeps only the latest track request
	lastSaved time.Time
}

func NewAnnotationPresenter(sess *model.Session, req AnnotationRequester, list RectListView, alert Alerter, logger *slog.Logger) *AnnotationPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnotationPresenter{sess: sess, req: req, list: list, alert: alert, logger: logger}
}

// Save pushes the full rectangle set of the current frame.
func (p *AnnotationPresenter) Save() {
	if p == nil || p.sess == nil {
		return
	}
	frame := p.sess.CurrentFrame()
	if frame < 0 {
		p.fail("Save", errors.New("no video selected"))
		return
	}
	rects, err := p.sess.Store.PrepareSave(frame)
	if err != nil {
		p.fail("Save", err)
		return
	}
	p.saving++
	p.logger.Info("saving rectangles", "frame", frame, "count", len(rects))
	p.req.Save(frame, rects)
}

// Delete removes a rectangle from the current frame.
func (p *AnnotationPresenter) Delete(id string) {
	if p == nil || p.sess == nil {
		return
	}
	frame := p.sess.CurrentFrame()
	if frame < 0 {
		return
	}
	if p.sess.Store.DeleteRectangle(frame, id) {
		p.logger.Debug("rectangle deleted", "frame", frame, "id", id)
		p.sess.MarkDirty()
	}
}

// CarryForward copies the previous frame's rectangles onto the displayed
// frame, each moved to where its content is found in the new image.
func (p *AnnotationPresenter) CarryForward() {
	if p == nil || p.sess == nil {
		return
	}
	frame := p.sess.CurrentFrame()
	switch {
	case frame < 0:
		p.fail("Carry forward", errors.New("no video selected"))
		return
	case frame == 0:
		p.fail("Carry forward", errors.New("frame 0 has no previous frame"))
		return
	case !p.sess.CanEdit():
		p.fail("Carry forward", errors.New("the frame is not ready for editing"))
		return
	}
	prev := p.sess.Store.ListRectangles(frame - 1)
	if len(prev) == 0 {
		p.fail("Carry forward", fmt.Errorf("frame %d has no rectangles", frame-1))
		return
	}
	p.tracking = true
	p.logger.Debug("tracking rectangles", "from", frame-1, "to", frame, "count", len(prev))
	p.req.Track(p.sess.Frame.Shown(), frame-1, prev, p.sess.Frame.Image())
}

// Tracking reports whether a carry forward is outstanding.
func (p *AnnotationPresenter) Tracking() bool { return p != nil && p.tracking }

// Saving reports whether a save is outstanding.
func (p *AnnotationPresenter) Saving() bool { return p != nil && p.saving > 0 }

// LastSaved returns when the last fully successful save finished.
func (p *AnnotationPresenter) LastSaved() time.Time {
	if p == nil {
		return time.Time{}
	}
	return p.lastSaved
}

// Refresh rebuilds the list when the frame or its rectangles changed.
func (p *AnnotationPresenter) Refresh() {
	if p == nil || p.sess == nil || p.list == nil {
		return
	}
	frame := p.sess.CurrentFrame()
	ids := p.sess.Store.SortedIDs(frame)
	shown := p.sess.Frame.Shown()
	onScreen := p.sess.Frame.Image() != nil && p.sess.Nav.Accept(shown)
	sig := fmt.Sprintf("%s|%d|%d|%t|%s", shown.Video, shown.Generation, frame, onScreen, strings.Join(ids, ","))
	if sig == p.signature {
		return
	}
	p.signature = sig
	rects := p.sess.Store.ListRectangles(frame)
	rows := make([]RectRow, 0, len(ids))
	for _, id := range ids {
		r := rects[id]
		label := fmt.Sprintf("%s  (%.3f, %.3f) %.3f x %.3f", ShortID(id), r.Center.X, r.Center.Y, r.Size.W, r.Size.H)
		row := RectRow{ID: id, Label: label}
		if onScreen {
			if thumb, _, err := images.Thumbnail(p.sess.Frame.Image(), r, thumbSide); err == nil {
				row.Thumb = thumb
			}
		}
		rows = append(rows, row)
	}
	p.list.SetRows(rows)
}

func (p *AnnotationPresenter) handleSave(res requestResult) {
	if p.saving > 0 {
		p.saving--
	}
	p.sess.Store.MarkSaved(res.save)
	p.sess.MarkDirty()
	if res.err == nil {
		p.lastSaved = time.Now()
		p.logger.Info("rectangles saved", "frame", res.save.Frame, "count", len(res.save.Saved), "took", res.took)
		return
	}
	var serr *annotation.SaveError
	if errors.As(res.err, &serr) {
		short := make([]string, len(serr.Failed))
		for i, id := range serr.Failed {
			short[i] = ShortID(id)
		}
		p.logger.Error("save", "frame", serr.Frame, "failed", serr.Failed, "total", serr.Total)
		if p.alert != nil {
			p.alert.Alert("Save", fmt.Sprintf("Frame %d: %d of %d rectangles were not saved: %s",
				serr.Frame, len(serr.Failed), serr.Total, strings.Join(short, ", ")))
		}
		return
	}
	p.fail("Save", res.err)
}

func (p *AnnotationPresenter) handleTrack(res requestResult) {
	p.tracking = false
	if !p.sess.Nav.Accept(res.frameReq) {
		p.logger.Debug("discarding stale tracking result", "frame", res.frameReq.Frame, "error", res.err)
		return
	}
	if res.err != nil {
		p.fail("Carry forward", res.err)
		return
	}
	rects := make([]annotation.Rectangle, len(res.matches))
	found := 0
	for i, m := range res.matches {
		rects[i] = m.Rect
		if m.Found {
			found++
		}
	}
	ids := p.sess.Store.AddRectangles(res.frameReq.Frame, rects)
	p.logger.Info("rectangles carried forward", "frame", res.frameReq.Frame, "added", len(ids), "tracked", found, "took", res.took)
	p.sess.MarkDirty()
}

func (p *AnnotationPresenter) fail(title string, err error) {
	p.logger.Error(title, "error", err)
	if p.alert != nil {
		p.alert.Alert(title, err.Error())
	}
}
