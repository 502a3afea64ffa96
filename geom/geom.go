// Package geom provides the planar primitives used by the annotation engine:
// points, rectangles, 2x3 affine matrices and the zoom/pan view transform.
package geom

import "math"

// Epsilon is the tolerance used when comparing coordinates.
const Epsilon = 1e-6

// Point is a floating-point coordinate. Whether it lives in canvas or
// screen space is decided by the caller.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Len returns the euclidean length of the vector p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }

// Eq reports whether p and q are equal within Epsilon.
func (p Point) Eq(q Point) bool {
	return math.Abs(p.X-q.X) <= Epsilon && math.Abs(p.Y-q.Y) <= Epsilon
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return finite(p.X) && finite(p.Y)
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis aligned rectangle. A well formed rectangle has Min <= Max
// on both axes; use Canon to normalise one built from two arbitrary corners.
type Rect struct {
	Min, Max Point
}

// RectFromPoints returns the canonical rectangle spanned by a and b.
func RectFromPoints(a, b Point) Rect {
	return Rect{Min: a, Max: b}.Canon()
}

// RectXYWH builds a rectangle from its origin and dimensions.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Min: Point{x, y}, Max: Point{x + w, y + h}}.Canon()
}

// Canon returns the rectangle with Min and Max swapped where necessary.
func (r Rect) Canon() Rect {
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Dx returns the width of r.
func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }

// Dy returns the height of r.
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Size returns the dimensions of r.
func (r Rect) Size() Size { return Size{r.Dx(), r.Dy()} }

// Center returns the middle point of r.
func (r Rect) Center() Point {
	return Point{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Dx() <= 0 || r.Dy() <= 0
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Inset shrinks r by d on every side. A negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{
		Min: Point{r.Min.X + d, r.Min.Y + d},
		Max: Point{r.Max.X - d, r.Max.Y - d},
	}
}

// Translate moves r by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

// Intersect returns the largest rectangle contained by both r and s. If the
// two do not overlap the zero Rect is returned.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{
		Min: Point{math.Max(r.Min.X, s.Min.X), math.Max(r.Min.Y, s.Min.Y)},
		Max: Point{math.Min(r.Max.X, s.Max.X), math.Min(r.Max.Y, s.Max.Y)},
	}
	if out.Min.X > out.Max.X || out.Min.Y > out.Max.Y {
		return Rect{}
	}
	return out
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{
		Min: Point{math.Min(r.Min.X, s.Min.X), math.Min(r.Min.Y, s.Min.Y)},
		Max: Point{math.Max(r.Max.X, s.Max.X), math.Max(r.Max.Y, s.Max.Y)},
	}
}

// Bounds returns the bounding box of the given points.
func Bounds(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// SegmentDist returns the distance from p to the segment ab.
func SegmentDist(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Mul(t)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
