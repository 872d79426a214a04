// Package geom holds the small float geometry types shared by the viewport,
// the annotation store and the renderer.
package geom

import "math"

// Point is a position in either screen or image pixel space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point   { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point   { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Div(k float64) Point { return Point{p.X / k, p.Y / k} }

// Eq reports whether p and q differ by at most eps on each axis.
func (p Point) Eq(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Sz is shorthand for Size{W: w, H: h}.
func Sz(w, h float64) Size { return Size{W: w, H: h} }

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Center returns the midpoint of a box of this size anchored at the origin.
func (s Size) Center() Point { return Point{s.W / 2, s.H / 2} }

// Clamp limits p to the box [0,W]x[0,H].
func (s Size) Clamp(p Point) Point {
	return Point{clamp(p.X, 0, s.W), clamp(p.Y, 0, s.H)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
