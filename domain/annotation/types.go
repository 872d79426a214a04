package annotation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/soocke/frame-annotator/domain/geom"
)

// Rectangle is a bounding box in normalized image coordinates: center and
// size are fractions of the frame width and height.
type Rectangle struct {
	Center geom.Point
	Size   geom.Size
}

// Degenerate reports whether the rectangle has no area.
func (r Rectangle) Degenerate() bool { return r.Size.W <= 0 || r.Size.H <= 0 }

// Bounds returns the top-left and bottom-right corners in pixel space for an
// image of the given size.
func (r Rectangle) Bounds(img geom.Size) (topLeft, bottomRight geom.Point) {
	cx, cy := r.Center.X*img.W, r.Center.Y*img.H
	hw, hh := r.Size.W*img.W/2, r.Size.H*img.H/2
	return geom.Pt(cx-hw, cy-hh), geom.Pt(cx+hw, cy+hh)
}

// wireRectangle is the JSON form exchanged with the backend.
type wireRectangle struct {
	XYWHN [4]float64 `json:"xywhn"`
}

func (r Rectangle) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRectangle{XYWHN: [4]float64{r.Center.X, r.Center.Y, r.Size.W, r.Size.H}})
}

func (r *Rectangle) UnmarshalJSON(b []byte) error {
	var w wireRectangle
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.Center = geom.Pt(w.XYWHN[0], w.XYWHN[1])
	r.Size = geom.Sz(w.XYWHN[2], w.XYWHN[3])
	return nil
}

// Rectangles maps rectangle id to rectangle for a single frame.
type Rectangles map[string]Rectangle

// Clone returns an independent copy. A nil receiver yields an empty map.
func (rs Rectangles) Clone() Rectangles {
	out := make(Rectangles, len(rs))
	for id, r := range rs {
		out[id] = r
	}
	return out
}

// FrameSet maps frame index to that frame's rectangles.
type FrameSet map[int]Rectangles

// ParseFrameSet converts the backend's string-keyed form into a FrameSet.
// Keys that are not non-negative integers are rejected.
func ParseFrameSet(raw map[string]Rectangles) (FrameSet, error) {
	out := make(FrameSet, len(raw))
	for key, rects := range raw {
		frame, err := strconv.Atoi(key)
		if err != nil || frame < 0 {
			return nil, fmt.Errorf("invalid frame key %q", key)
		}
		out[frame] = rects.Clone()
	}
	return out, nil
}
