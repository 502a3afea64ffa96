package markup

import (
	"math"

	"github.com/esimov/markup/geom"
)

// Handle identifies a manipulation point of an object.
type Handle int

const (
	HandleNone Handle = iota
	HandleMove
	HandleStart
	HandleEnd
	HandleBend
	HandleTopLeft
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
	HandleFontSize
)

// HandlePoint is a handle together with its position in canvas space.
type HandlePoint struct {
	Handle Handle
	Pos    geom.Point
}

// Handles returns the manipulation handles of an object in a stable order.
func Handles(o Object) []HandlePoint {
	switch s := o.Shape.(type) {
	case Segment:
		mid := s.Start.Add(s.End).Mul(0.5)
		if s.Curve != 0 {
			mid = s.Start.Mul(0.25).Add(s.Control().Mul(0.5)).Add(s.End.Mul(0.25))
		}
		return []HandlePoint{{HandleStart, s.Start}, {HandleEnd, s.End}, {HandleBend, mid}}
	case Box:
		return rectHandles(s.Rect.Canon())
	case Path:
		r := s.Bounds()
		return []HandlePoint{
			{HandleTopLeft, r.Min},
			{HandleTopRight, geom.Pt(r.Max.X, r.Min.Y)},
			{HandleBottomRight, r.Max},
			{HandleBottomLeft, geom.Pt(r.Min.X, r.Max.Y)},
		}
	case Label:
		b := s.Bounds()
		return []HandlePoint{{HandleMove, s.Anchor}, {HandleFontSize, b.Max}}
	case Badge:
		return []HandlePoint{{HandleMove, s.Center}}
	}
	return nil
}

// rectHandles returns the eight corner and edge handles of r.
func rectHandles(r geom.Rect) []HandlePoint {
	c := r.Center()
	return []HandlePoint{
		{HandleTopLeft, r.Min},
		{HandleTop, geom.Pt(c.X, r.Min.Y)},
		{HandleTopRight, geom.Pt(r.Max.X, r.Min.Y)},
		{HandleRight, geom.Pt(r.Max.X, c.Y)},
		{HandleBottomRight, r.Max},
		{HandleBottom, geom.Pt(c.X, r.Max.Y)},
		{HandleBottomLeft, geom.Pt(r.Min.X, r.Max.Y)},
		{HandleLeft, geom.Pt(r.Min.X, c.Y)},
	}
}

// HandleAt returns the handle of o whose position lies within tol of p.
func HandleAt(o Object, p geom.Point, tol float64) Handle {
	for _, h := range Handles(o) {
		if math.Abs(h.Pos.X-p.X) <= tol && math.Abs(h.Pos.Y-p.Y) <= tol {
			return h.Handle
		}
	}
	return HandleNone
}

// DragHandle returns the state of orig after handle h was dragged from the
// canvas point from to the canvas point to. Label extents are refreshed
// with m when the font size changes.
func DragHandle(orig Object, h Handle, from, to geom.Point, m TextMeasurer) Object {
	o := orig.Clone()
	delta := to.Sub(from)
	if h == HandleMove {
		return o.Translate(delta)
	}
	switch s := o.Shape.(type) {
	case Segment:
		switch h {
		case HandleStart:
			s.Start = s.Start.Add(delta)
		case HandleEnd:
			s.End = s.End.Add(delta)
		case HandleBend:
			d := s.End.Sub(s.Start)
			if l := d.Len(); l > 0 {
				n := geom.Pt(-d.Y/l, d.X/l)
				mid := s.Start.Add(s.End).Mul(0.5)
				s.Curve = to.Sub(mid).Dot(n)
			}
		}
		o.Shape = s
	case Box:
		s.Rect = resizeRect(s.Rect.Canon(), h, delta)
		o.Shape = s
	case Path:
		o.Shape = scalePath(s, h, delta)
	case Label:
		if h == HandleFontSize && s.Extent.H > 0 {
			k := (s.Extent.H + delta.Y) / s.Extent.H
			s.Size = math.Max(4, s.Size*k)
			o.Shape = s.Measure(m)
		}
	}
	return o
}

// resizeRect moves the sides of r addressed by h. The result is canonical.
func resizeRect(r geom.Rect, h Handle, d geom.Point) geom.Rect {
	switch h {
	case HandleTopLeft, HandleLeft, HandleBottomLeft:
		r.Min.X += d.X
	case HandleTopRight, HandleRight, HandleBottomRight:
		r.Max.X += d.X
	}
	switch h {
	case HandleTopLeft, HandleTop, HandleTopRight:
		r.Min.Y += d.Y
	case HandleBottomLeft, HandleBottom, HandleBottomRight:
		r.Max.Y += d.Y
	}
	return r.Canon()
}

// scalePath scales the points so the dragged corner follows the pointer
// while the opposite corner stays fixed.
func scalePath(p Path, h Handle, d geom.Point) Path {
	b := p.Bounds()
	nb := resizeRect(b, h, d)
	sx, sy := 1.0, 1.0
	if b.Dx() > 0 {
		sx = nb.Dx() / b.Dx()
	}
	if b.Dy() > 0 {
		sy = nb.Dy() / b.Dy()
	}
	// A corner dragged past its opposite does not mirror the stroke.
	m := geom.Translation(nb.Min.X, nb.Min.Y).
		Mul(geom.Scaling(sx, sy)).
		Mul(geom.Translation(-b.Min.X, -b.Min.Y))
	pts := make([]geom.Point, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = m.Apply(pt)
	}
	return Path{Points: pts}
}
