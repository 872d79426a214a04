package navigation

import (
	"errors"
	"fmt"
	"log/slog"
)

// State enumerates the navigation states.
type State int

const (
	StateNoVideo State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateNoVideo:
		return "no video"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

var (
	ErrNoVideo   = errors.New("no video selected")
	ErrStale     = errors.New("stale response")
	ErrNoFrames  = errors.New("video has no frames")
	ErrEmptyName = errors.New("empty video name")
)

// Listener is called on each state transition.
type Listener func(prev, next State)

// SetupRequest tags a pending video selection. Generation increases with
// every selection so late answers for an abandoned selection are ignored.
type SetupRequest struct {
	Video      string
	Generation uint64
}

// FrameRequest tags a frame load with the video generation and frame index
// it was issued for.
type FrameRequest struct {
	Video      string
	Generation uint64
	Frame      int
}

// Navigator is the frame navigation state machine:
//
//	NoVideo --VideoReady--> Loaded(0) --SetFrame(n)--> Loaded(clamp(n))
//
// A failed selection leaves the previous state untouched. Not safe for
// concurrent use; responses are fed back on the UI thread.
type Navigator struct {
	state     State
	video     string
	total     int
	frame     int
	loadedGen uint64
	pending   SetupRequest
	gen       uint64
	logger    *slog.Logger
	listeners []Listener
}

// New returns a navigator in StateNoVideo.
func New(logger *slog.Logger) *Navigator {
	return &Navigator{state: StateNoVideo, logger: logger}
}

func (n *Navigator) AddListener(l Listener) { n.listeners = append(n.listeners, l) }
func (n *Navigator) State() State           { return n.state }
func (n *Navigator) Video() string          { return n.video }
func (n *Navigator) Total() int             { return n.total }

// Current returns the target frame; it is only meaningful in StateLoaded.
func (n *Navigator) Current() int { return n.frame }

// Max returns the largest valid frame index, or -1 without a video.
func (n *Navigator) Max() int {
	if n.state != StateLoaded {
		return -1
	}
	return n.total - 1
}

// SelectVideo starts a selection and returns the request to send.
// The current state is kept until VideoReady accepts the answer.
func (n *Navigator) SelectVideo(name string) (SetupRequest, error) {
	if name == "" {
		return SetupRequest{}, ErrEmptyName
	}
	n.gen++
	n.pending = SetupRequest{Video: name, Generation: n.gen}
	return n.pending, nil
}

// VideoReady applies a successful setup answer. It moves to Loaded(0) and
// returns the request for the first frame.
func (n *Navigator) VideoReady(req SetupRequest, totalFrames int) (FrameRequest, error) {
	if req != n.pending || req.Generation == 0 {
		return FrameRequest{}, fmt.Errorf("setup %q: %w", req.Video, ErrStale)
	}
	n.pending = SetupRequest{}
	if totalFrames <= 0 {
		return FrameRequest{}, fmt.Errorf("setup %q: %w", req.Video, ErrNoFrames)
	}
	n.video = req.Video
	n.total = totalFrames
	n.frame = 0
	n.loadedGen = req.Generation
	n.transition(StateLoaded)
	if n.logger != nil {
		n.logger.Debug("video loaded", "video", n.video, "total_frames", n.total)
	}
	return n.request(), nil
}

// VideoFailed drops a pending selection. It reports whether req was the
// latest selection (and therefore worth surfacing to the user).
func (n *Navigator) VideoFailed(req SetupRequest) bool {
	if req != n.pending || req.Generation == 0 {
		return false
	}
	n.pending = SetupRequest{}
	return true
}

// Pending reports whether a selection is awaiting its answer.
func (n *Navigator) Pending() bool { return n.pending.Generation != 0 }

// SetFrame clamps frame to [0, total-1], makes it the target and returns the
// load request. The bool is false when the target did not change.
func (n *Navigator) SetFrame(frame int) (FrameRequest, bool, error) {
	if n.state != StateLoaded {
		return FrameRequest{}, false, ErrNoVideo
	}
	if frame < 0 {
		frame = 0
	}
	if frame > n.total-1 {
		frame = n.total - 1
	}
	changed := frame != n.frame
	n.frame = frame
	return n.request(), changed, nil
}

// Step moves the target by delta frames.
func (n *Navigator) Step(delta int) (FrameRequest, bool, error) {
	return n.SetFrame(n.frame + delta)
}

// Reload returns a request for the current target without changing it.
func (n *Navigator) Reload() (FrameRequest, error) {
	if n.state != StateLoaded {
		return FrameRequest{}, ErrNoVideo
	}
	return n.request(), nil
}

// Accept reports whether a finished frame load still matches the current
// video and target frame. Out-of-order answers are rejected.
func (n *Navigator) Accept(req FrameRequest) bool {
	return n.state == StateLoaded &&
		req.Generation == n.loadedGen &&
		req.Video == n.video &&
		req.Frame == n.frame
}

func (n *Navigator) request() FrameRequest {
	return FrameRequest{Video: n.video, Generation: n.loadedGen, Frame: n.frame}
}

func (n *Navigator) transition(next State) {
	prev := n.state
	n.state = next
	// Loaded -> Loaded (another video) is reported too so views can reset.
	for _, l := range n.listeners {
		l(prev, next)
	}
}
