package annotation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/frame-annotator/domain/geom"
)

// Saver pushes one frame's rectangles to the backend and reports, per id,
// whether the backend accepted it.
type Saver interface {
	SaveRectangles(ctx context.Context, frame int, rects Rectangles) (map[string]bool, error)
}

// SaveResult lists the outcome of a frame save.
type SaveResult struct {
	Frame  int
	Saved  []string
	Failed []string
}

// Store keeps the rectangles of every frame of the selected video.
// The zero value is not usable; call NewStore. Not safe for concurrent use:
// the UI thread owns it and network work operates on snapshots.
type Store struct {
	frames FrameSet
	dirty  map[int]bool
	newID  func() string
}

// NewStore returns an empty store using timestamp-based ids.
func NewStore() *Store {
	return &Store{frames: make(FrameSet), dirty: make(map[int]bool), newID: newRectangleID}
}

// SetIDFunc overrides id generation. Nil restores the default.
func (s *Store) SetIDFunc(fn func() string) {
	if fn == nil {
		fn = newRectangleID
	}
	s.newID = fn
}

// SetFrameAnnotations replaces the rectangles of one frame with a copy of
// rects. The frame is considered in sync with the backend afterwards.
func (s *Store) SetFrameAnnotations(frame int, rects Rectangles) {
	if frame < 0 {
		return
	}
	if len(rects) == 0 {
		delete(s.frames, frame)
	} else {
		s.frames[frame] = rects.Clone()
	}
	delete(s.dirty, frame)
}

// ReplaceAll discards every frame and loads set, as done when a video is
// selected.
func (s *Store) ReplaceAll(set FrameSet) {
	s.frames = make(FrameSet, len(set))
	s.dirty = make(map[int]bool)
	for frame, rects := range set {
		s.SetFrameAnnotations(frame, rects)
	}
}

// AddRectangle normalizes the box spanned by two image-space corners into
// center/size form relative to img and stores it under a fresh id. Corners
// are clamped to the image first. It returns false and stores nothing when
// the result has zero width or height.
func (s *Store) AddRectangle(frame int, start, end geom.Point, img geom.Size) (string, bool) {
	if frame < 0 || img.Empty() {
		return "", false
	}
	a, b := img.Clamp(start), img.Clamp(end)
	w, h := abs(b.X-a.X), abs(b.Y-a.Y)
	if w == 0 || h == 0 {
		return "", false
	}
	r := Rectangle{
		Center: geom.Pt((a.X+b.X)/2/img.W, (a.Y+b.Y)/2/img.H),
		Size:   geom.Sz(w/img.W, h/img.H),
	}
	rects := s.frames[frame]
	if rects == nil {
		rects = make(Rectangles)
		s.frames[frame] = rects
	}
	id := s.freshID(rects)
	rects[id] = r
	s.dirty[frame] = true
	return id, true
}

// freshID returns a new id not used in rects.
func (s *Store) freshID(rects Rectangles) string {
	id := s.newID()
	for {
		if _, taken := rects[id]; !taken {
			return id
		}
		id = s.newID()
	}
}

// AddRectangles stores already normalized rectangles under fresh ids and
// returns the ids in input order. Degenerate rectangles are skipped.
func (s *Store) AddRectangles(frame int, rs []Rectangle) []string {
	if frame < 0 {
		return nil
	}
	var ids []string
	for _, r := range rs {
		if r.Degenerate() {
			continue
		}
		rects := s.frames[frame]
		if rects == nil {
			rects = make(Rectangles)
			s.frames[frame] = rects
		}
		id := s.freshID(rects)
		rects[id] = r
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		s.dirty[frame] = true
	}
	return ids
}

// DeleteRectangle removes id from frame. Unknown ids are ignored.
func (s *Store) DeleteRectangle(frame int, id string) bool {
	rects := s.frames[frame]
	if _, ok := rects[id]; !ok {
		return false
	}
	delete(rects, id)
	if len(rects) == 0 {
		delete(s.frames, frame)
	}
	s.dirty[frame] = true
	return true
}

// ListRectangles returns a copy of the frame's rectangles; never nil.
func (s *Store) ListRectangles(frame int) Rectangles {
	return s.frames[frame].Clone()
}

// SortedIDs returns the frame's rectangle ids in ascending order.
func (s *Store) SortedIDs(frame int) []string {
	ids := make([]string, 0, len(s.frames[frame]))
	for id := range s.frames[frame] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Count(frame int) int { return len(s.frames[frame]) }

// Dirty reports whether frame has local edits not yet saved.
func (s *Store) Dirty(frame int) bool { return s.dirty[frame] }

// Frames returns the annotated frame indexes in ascending order.
func (s *Store) Frames() []int {
	out := make([]int, 0, len(s.frames))
	for f := range s.frames {
		out = append(out, f)
	}
	sort.Ints(out)
	return out
}

// PrepareSave snapshots the frame for a save. It fails with ErrEmptySave
// when the frame has no rectangles.
func (s *Store) PrepareSave(frame int) (Rectangles, error) {
	if len(s.frames[frame]) == 0 {
		return nil, fmt.Errorf("frame %d: %w", frame, ErrEmptySave)
	}
	return s.frames[frame].Clone(), nil
}

// MarkSaved clears the dirty flag once every rectangle of a snapshot was
// accepted and the frame has not been edited since.
func (s *Store) MarkSaved(res SaveResult) {
	if len(res.Failed) > 0 {
		return
	}
	rects := s.frames[res.Frame]
	if len(rects) != len(res.Saved) {
		return
	}
	for _, id := range res.Saved {
		if _, ok := rects[id]; !ok {
			return
		}
	}
	delete(s.dirty, res.Frame)
}

// SaveFrame sends the full rectangle set of frame through saver. It is the
// synchronous composition of PrepareSave, Save and MarkSaved.
func (s *Store) SaveFrame(ctx context.Context, frame int, saver Saver) (SaveResult, error) {
	rects, err := s.PrepareSave(frame)
	if err != nil {
		return SaveResult{Frame: frame}, err
	}
	res, err := Save(ctx, saver, frame, rects)
	s.MarkSaved(res)
	return res, err
}

// Save pushes a snapshot and classifies the per-id results. Ids missing from
// the backend response count as failed. Any failure yields a *SaveError.
func Save(ctx context.Context, saver Saver, frame int, rects Rectangles) (SaveResult, error) {
	res := SaveResult{Frame: frame}
	if len(rects) == 0 {
		return res, fmt.Errorf("frame %d: %w", frame, ErrEmptySave)
	}
	results, err := saver.SaveRectangles(ctx, frame, rects)
	if err != nil {
		return res, err
	}
	for id := range rects {
		if results[id] {
			res.Saved = append(res.Saved, id)
		} else {
			res.Failed = append(res.Failed, id)
		}
	}
	sort.Strings(res.Saved)
	if len(res.Failed) > 0 {
		serr := newSaveError(frame, res.Failed, len(rects))
		res.Failed = serr.Failed
		return res, serr
	}
	return res, nil
}

func newRectangleID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
