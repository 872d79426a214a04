package presenter

import (
	"time"

	"github.com/soocke/frame-annotator/ui/model"
)

// Loop drives periodic updates from the Tk `after` tick.
//
// Each tick hands finished backend results to the presenters, flushes state
// transitions, re-renders once when the session is dirty and reschedules
// itself. The zero value is usable (methods are nil-safe).
type Loop struct {
	Session     *model.Session
	Requests    *Requests
	Nav         *NavigationPresenter
	Canvas      *CanvasPresenter
	Annotations *AnnotationPresenter
	Status      *StatusPresenter
	Schedule    func()
}

func NewLoop(sess *model.Session, req *Requests, nav *NavigationPresenter, canvas *CanvasPresenter, ann *AnnotationPresenter, status *StatusPresenter, schedule func()) *Loop {
	return &Loop{Session: sess, Requests: req, Nav: nav, Canvas: canvas, Annotations: ann, Status: status, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Requests != nil {
		l.Requests.Drain(l.dispatch)
	}
	if l.Nav != nil {
		l.Nav.Tick(now)
	}
	if l.Session.TakeDirty() {
		l.Canvas.Render()
		l.Annotations.Refresh()
		l.Nav.Refresh()
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}

func (l *Loop) dispatch(res requestResult) {
	switch res.kind {
	case taskSetup:
		if l.Nav != nil {
			l.Nav.handleSetup(res)
		}
	case taskFrame:
		if l.Nav != nil {
			l.Nav.handleFrame(res)
		}
	case taskSave:
		if l.Annotations != nil {
			l.Annotations.handleSave(res)
		}
	case taskTrack:
		if l.Annotations != nil {
			l.Annotations.handleTrack(res)
		}
	}
}
