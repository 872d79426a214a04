package presenter

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/frame-annotator/backend"
	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/navigation"
	"github.com/soocke/frame-annotator/domain/tracking"
	"github.com/soocke/frame-annotator/ui/model"
)

// Backend is the subset of the REST client used by the request worker.
type Backend interface {
	SetupVideo(ctx context.Context, name string) (backend.Setup, error)
	SaveRectangles(ctx context.Context, frame int, rects annotation.Rectangles) (map[string]bool, error)
	ListImages(ctx context.Context) ([]string, error)
}

// FrameSource fetches decoded frames.
type FrameSource interface {
	VideoFrame(ctx context.Context, video string, n int) (backend.Frame, error)
	GalleryImage(ctx context.Context, name string) (backend.Frame, error)
	Prefetch(video string, n int)
	Purge()
}

type taskKind int

const (
	taskSetup taskKind = iota + 1
	taskSave
	taskTrack
	taskFrame
)

type requestTask struct {
	kind  taskKind
	seq   uint64 // enqueue order, orders saves against setups
	setup navigation.SetupRequest
	frame navigation.FrameRequest
	image string // gallery file name for taskFrame in gallery mode
	save  annotation.Rectangles
	saveN int

	// taskTrack: rectangles of frame trackFrom, located in trackCur.
	trackFrom  int
	trackRects annotation.Rectangles
	trackCur   image.Image
}

type requestResult struct {
	kind     taskKind
	setupReq navigation.SetupRequest
	setup    backend.Setup
	images   []string
	frameReq navigation.FrameRequest
	frame    backend.Frame
	save     annotation.SaveResult
	matches  []tracking.Match
	err      error
	took     time.Duration
}

// Requests runs backend calls on a single worker goroutine so the Tk thread
// never blocks. Only the latest setup, track and frame request are kept;
// saves queue up and run before tracking and frame loads. The backend saves
// into whichever video it has open, so saves queued before a setup run
// before it. Results are collected by Drain
// on the Tk thread.
type Requests struct {
	api     Backend
	frames  FrameSource
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	setup   *requestTask
	track   *requestTask
	frame   *requestTask
	saves   []requestTask
	pending int
	seq     uint64

	workerOnce sync.Once
	wake       chan struct{}
	resultCh   chan requestResult
	done       chan struct{}
	closeOnce  sync.Once
}

// NewRequests constructs the worker; it starts on the first request.
func NewRequests(api Backend, frames FrameSource, timeout time.Duration, logger *slog.Logger) *Requests {
	return &Requests{
		api:      api,
		frames:   frames,
		logger:   logger,
		timeout:  timeout,
		wake:     make(chan struct{}, 1),
		resultCh: make(chan requestResult, 16),
		done:     make(chan struct{}),
	}
}

// Setup schedules a video selection, replacing any unsent one.
func (r *Requests) Setup(req navigation.SetupRequest) {
	r.enqueue(func() {
		if r.setup == nil {
			r.pending++
		}
		r.seq++
		r.setup = &requestTask{kind: taskSetup, seq: r.seq, setup: req}
	})
}

// Frame schedules a frame load, replacing any unsent one. file names the
// gallery file when browsing the gallery.
func (r *Requests) Frame(req navigation.FrameRequest, file string) {
	r.enqueue(func() {
		if r.frame == nil {
			r.pending++
		}
		r.frame = &requestTask{kind: taskFrame, frame: req, image: file}
	})
}

// Track schedules locating the rectangles of frame from in cur, the decoded
// image of the displayed frame req. It replaces any unsent track request.
func (r *Requests) Track(req navigation.FrameRequest, from int, rects annotation.Rectangles, cur image.Image) {
	r.enqueue(func() {
		if r.track == nil {
			r.pending++
		}
		r.track = &requestTask{kind: taskTrack, frame: req, trackFrom: from, trackRects: rects, trackCur: cur}
	})
}

// Save queues a save of one frame's rectangle snapshot.
func (r *Requests) Save(frame int, rects annotation.Rectangles) {
	r.enqueue(func() {
		r.pending++
		r.seq++
		r.saves = append(r.saves, requestTask{kind: taskSave, seq: r.seq, saveN: frame, save: rects})
	})
}

// Prefetch warms the frame cache for frame n of video.
func (r *Requests) Prefetch(video string, n int) {
	if r.frames == nil || video == model.GalleryVideo {
		return
	}
	r.frames.Prefetch(video, n)
}

// Busy reports whether any request is queued or in flight.
func (r *Requests) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending > 0
}

// Drain hands every finished result to handle. Call from the Tk thread.
func (r *Requests) Drain(handle func(requestResult)) {
	for {
		select {
		case res := <-r.resultCh:
			handle(res)
		default:
			return
		}
	}
}

// Close stops the worker. Queued requests are dropped.
func (r *Requests) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *Requests) enqueue(add func()) {
	if r == nil {
		return
	}
	r.workerOnce.Do(func() { go r.runWorker() })
	r.mu.Lock()
	add()
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Requests) next() (requestTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case len(r.saves) > 0 && (r.setup == nil || r.saves[0].seq < r.setup.seq):
		t := r.saves[0]
		r.saves = r.saves[1:]
		return t, true
	case r.setup != nil:
		t := *r.setup
		r.setup = nil
		return t, true
	case r.track != nil:
		t := *r.track
		r.track = nil
		return t, true
	case r.frame != nil:
		t := *r.frame
		r.frame = nil
		return t, true
	}
	return requestTask{}, false
}

func (r *Requests) runWorker() {
	for {
		select {
		case <-r.done:
			return
		case <-r.wake:
		}
		for {
			task, ok := r.next()
			if !ok {
				break
			}
			res := r.execute(task)
			select {
			case r.resultCh <- res:
			case <-r.done:
				return
			}
			r.mu.Lock()
			r.pending--
			r.mu.Unlock()
		}
	}
}

func (r *Requests) execute(task requestTask) requestResult {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	start := time.Now()
	res := requestResult{kind: task.kind}
	switch task.kind {
	case taskSetup:
		res.setupReq = task.setup
		res.setup, res.images, res.err = r.doSetup(ctx, task.setup.Video)
	case taskSave:
		res.save, res.err = annotation.Save(ctx, r.api, task.saveN, task.save)
	case taskFrame:
		res.frameReq = task.frame
		if task.frame.Video == model.GalleryVideo {
			res.frame, res.err = r.frames.GalleryImage(ctx, task.image)
		} else {
			res.frame, res.err = r.frames.VideoFrame(ctx, task.frame.Video, task.frame.Frame)
		}
	case taskTrack:
		res.frameReq = task.frame
		res.matches, res.err = r.doTrack(ctx, task)
	default:
		res.err = errors.New("unknown request kind")
	}
	res.took = time.Since(start)
	if r.logger != nil {
		r.logger.Debug("request done", "kind", task.kind, "took", res.took, "error", res.err)
	}
	return res
}

func (r *Requests) doTrack(ctx context.Context, task requestTask) ([]tracking.Match, error) {
	prev, err := r.frames.VideoFrame(ctx, task.frame.Video, task.trackFrom)
	if err != nil {
		return nil, err
	}
	return tracking.Track(ctx, prev.Image, task.trackCur, task.trackRects, tracking.DefaultOptions())
}

func (r *Requests) doSetup(ctx context.Context, name string) (backend.Setup, []string, error) {
	if name == model.GalleryVideo {
		images, err := r.api.ListImages(ctx)
		if err != nil {
			return backend.Setup{}, nil, err
		}
		return backend.Setup{TotalFrames: len(images)}, images, nil
	}
	// The backend frame cursor now belongs to another video.
	r.frames.Purge()
	setup, err := r.api.SetupVideo(ctx, name)
	return setup, nil, err
}
