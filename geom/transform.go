package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTransform is returned when a zoom factor, device pixel ratio or
// scale factor is non-positive or not a finite number.
var ErrInvalidTransform = errors.New("invalid transform")

// Default zoom limits.
const (
	DefaultMinZoom float64 = 0.1
	DefaultMaxZoom float64 = 10
)

// Transform maps canvas space to screen space:
//
//	screen = DPR * (Zoom*canvas + Offset)
//
// Offset is expressed in logical (device independent) screen units.
type Transform struct {
	Offset  Point
	Zoom    float64
	DPR     float64
	MinZoom float64
	MaxZoom float64
}

// NewTransform returns a transform with the given zoom and device pixel
// ratio and the default zoom limits.
func NewTransform(zoom, dpr float64) (Transform, error) {
	t := Transform{
		Zoom:    zoom,
		DPR:     dpr,
		MinZoom: DefaultMinZoom,
		MaxZoom: DefaultMaxZoom,
	}
	if err := t.Validate(); err != nil {
		return Transform{}, err
	}
	t.Zoom = t.clamp(zoom)
	return t, nil
}

// Validate checks the transform invariants.
func (t Transform) Validate() error {
	switch {
	case !positive(t.Zoom):
		return fmt.Errorf("%w: zoom %v", ErrInvalidTransform, t.Zoom)
	case !positive(t.DPR):
		return fmt.Errorf("%w: device pixel ratio %v", ErrInvalidTransform, t.DPR)
	case !positive(t.MinZoom) || !positive(t.MaxZoom) || t.MinZoom > t.MaxZoom:
		return fmt.Errorf("%w: zoom range [%v, %v]", ErrInvalidTransform, t.MinZoom, t.MaxZoom)
	case !t.Offset.Finite():
		return fmt.Errorf("%w: offset %v", ErrInvalidTransform, t.Offset)
	}
	return nil
}

// WithLimits returns a copy of t using the given zoom range. The current
// zoom is clamped into the new range.
func (t Transform) WithLimits(min, max float64) (Transform, error) {
	t.MinZoom, t.MaxZoom = min, max
	if err := t.Validate(); err != nil {
		return t, err
	}
	t.Zoom = t.clamp(t.Zoom)
	return t, nil
}

// Scale returns the total number of device pixels per canvas unit.
func (t Transform) Scale() float64 {
	return t.Zoom * t.DPR
}

// Affine returns the canvas to screen matrix.
func (t Transform) Affine() Affine {
	s := t.Scale()
	return Affine{A: s, D: s, E: t.DPR * t.Offset.X, F: t.DPR * t.Offset.Y}
}

// ToScreen maps a canvas point to screen space.
func (t Transform) ToScreen(c Point) Point {
	return Point{
		X: t.DPR * (t.Zoom*c.X + t.Offset.X),
		Y: t.DPR * (t.Zoom*c.Y + t.Offset.Y),
	}
}

// ToCanvas maps a screen point to canvas space.
func (t Transform) ToCanvas(s Point) Point {
	return Point{
		X: (s.X/t.DPR - t.Offset.X) / t.Zoom,
		Y: (s.Y/t.DPR - t.Offset.Y) / t.Zoom,
	}
}

// RectToScreen maps a canvas rectangle to screen space.
func (t Transform) RectToScreen(r Rect) Rect {
	return Rect{Min: t.ToScreen(r.Min), Max: t.ToScreen(r.Max)}
}

// CanvasLength converts a screen space length into canvas units.
func (t Transform) CanvasLength(screen float64) float64 {
	return screen / t.Scale()
}

// ScaleBy multiplies the zoom by factor while keeping the canvas point
// under the screen space pivot fixed. The resulting zoom is clamped to
// [MinZoom, MaxZoom]. An invalid transform is left unchanged.
func (t *Transform) ScaleBy(factor float64, pivot Point) error {
	if !positive(factor) {
		return fmt.Errorf("%w: scale factor %v", ErrInvalidTransform, factor)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	zoom := t.clamp(t.Zoom * factor)
	if !positive(zoom) {
		return fmt.Errorf("%w: zoom %v", ErrInvalidTransform, zoom)
	}
	anchor := t.ToCanvas(pivot)
	t.Zoom = zoom
	t.Offset = Point{
		X: pivot.X/t.DPR - t.Zoom*anchor.X,
		Y: pivot.Y/t.DPR - t.Zoom*anchor.Y,
	}
	return nil
}

// Translate pans the view by a screen space delta. Panning is unbounded.
func (t *Transform) Translate(delta Point) {
	t.Offset = t.Offset.Add(delta.Mul(1 / t.DPR))
}

// Fit zooms and centres the canvas of the given size inside a viewport
// given in device pixels. Empty sizes leave the transform unchanged.
func (t *Transform) Fit(canvas, viewport Size) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if canvas.W <= 0 || canvas.H <= 0 || viewport.W <= 0 || viewport.H <= 0 {
		return nil
	}
	vw, vh := viewport.W/t.DPR, viewport.H/t.DPR
	t.Zoom = t.clamp(math.Min(1, math.Min(vw/canvas.W, vh/canvas.H)))
	t.Offset = Point{
		X: (vw - canvas.W*t.Zoom) / 2,
		Y: (vh - canvas.H*t.Zoom) / 2,
	}
	return nil
}

func (t Transform) clamp(z float64) float64 {
	return math.Max(t.MinZoom, math.Min(t.MaxZoom, z))
}

func positive(v float64) bool {
	return v > 0 && finite(v)
}
