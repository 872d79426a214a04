package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/frame-annotator/ui/model"
)

// StatusView displays a one-line session summary.
type StatusView interface {
	SetStatus(text string)
}

// BusyReporter reports outstanding backend work.
type BusyReporter interface{ Busy() bool }

// SaveTracker reports the save and carry forward workflow state.
type SaveTracker interface {
	Saving() bool
	Tracking() bool
	LastSaved() time.Time
}

// StatusPresenter formats the session summary for the status bar.
type StatusPresenter struct {
	sess  *model.Session
	busy  BusyReporter
	saves SaveTracker
	view  StatusView
	last  string
}

func NewStatusPresenter(sess *model.Session, busy BusyReporter, saves SaveTracker, view StatusView) *StatusPresenter {
	return &StatusPresenter{sess: sess, busy: busy, saves: saves, view: view}
}

// Tick recomputes the summary and pushes it when it changed.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.view == nil {
		return
	}
	text := p.Text(now)
	if text == p.last {
		return
	}
	p.last = text
	p.view.SetStatus(text)
}

// Text builds the summary line.
func (p *StatusPresenter) Text(now time.Time) string {
	s := p.sess
	var parts []string
	frame := s.CurrentFrame()
	if frame < 0 {
		parts = append(parts, "no video")
	} else {
		parts = append(parts, s.Nav.Video())
		n := s.Store.Count(frame)
		boxes := fmt.Sprintf("%d %s", n, plural(n, "box", "boxes"))
		if s.Store.Dirty(frame) {
			boxes += " (unsaved)"
		}
		parts = append(parts, boxes)
	}
	parts = append(parts, fmt.Sprintf("zoom %.0f%%", s.View.Scale()*100))
	if size, _ := s.Frame.Info(); size > 0 {
		parts = append(parts, humanize.Bytes(uint64(size)))
	}
	if s.Draw.Enabled() {
		parts = append(parts, "draw")
	}
	if p.saves != nil {
		if p.saves.Tracking() {
			parts = append(parts, "tracking...")
		}
		if p.saves.Saving() {
			parts = append(parts, "saving...")
		} else if t := p.saves.LastSaved(); !t.IsZero() {
			parts = append(parts, "saved "+humanize.RelTime(t, now, "ago", "from now"))
		}
	}
	if p.busy != nil && p.busy.Busy() {
		parts = append(parts, "working...")
	}
	return strings.Join(parts, " | ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
