package markup

import (
	"math"

	"github.com/esimov/markup/geom"
)

// HitTest returns the topmost object containing p within tol canvas units.
func HitTest(d *Document, p geom.Point, tol float64) (ID, bool) {
	for i := len(d.objects) - 1; i >= 0; i-- {
		if d.objects[i].Hit(p, tol) {
			return d.objects[i].ID, true
		}
	}
	return 0, false
}

// Hit reports whether p touches the object within tol canvas units.
// Outline shapes are only hit along their stroke unless they are filled;
// text, markers and the region kinds are hit anywhere inside.
func (o Object) Hit(p geom.Point, tol float64) bool {
	band := tol + o.Style.Width/2
	switch s := o.Shape.(type) {
	case Segment:
		if polylineDist(p, s.Polyline()) <= band {
			return true
		}
		if o.Kind == Arrow {
			l, r := ArrowHead(s, o.Style.Width)
			return geom.SegmentDist(p, s.End, l) <= band || geom.SegmentDist(p, s.End, r) <= band
		}
		return false
	case Path:
		if len(s.Points) == 1 {
			return p.Dist(s.Points[0]) <= band
		}
		return polylineDist(p, s.Points) <= band
	case Box:
		r := s.Rect.Canon()
		switch o.Kind {
		case Ellipse:
			return hitEllipse(p, r, band, o.Style.Filled)
		case Rectangle:
			d := roundedRectDist(p, r, s.Radius)
			if o.Style.Filled {
				return d <= band
			}
			return math.Abs(d) <= band
		case Crop:
			return false
		}
		return r.Inset(-tol).Contains(p)
	case Label:
		return s.Bounds().Inset(-tol).Contains(p)
	case Badge:
		return p.Dist(s.Center) <= s.Radius+tol
	}
	return false
}

func polylineDist(p geom.Point, pts []geom.Point) float64 {
	best := -1.0
	for i := 1; i < len(pts); i++ {
		if d := geom.SegmentDist(p, pts[i-1], pts[i]); best < 0 || d < best {
			best = d
		}
	}
	return best
}

// roundedRectDist is the signed distance from p to the outline of r with
// corners rounded by radius, negative inside. The radius is limited to
// half the shorter side.
func roundedRectDist(p geom.Point, r geom.Rect, radius float64) float64 {
	c := r.Center()
	hw, hh := r.Dx()/2, r.Dy()/2
	radius = math.Max(0, math.Min(radius, math.Min(hw, hh)))
	qx := math.Abs(p.X-c.X) - (hw - radius)
	qy := math.Abs(p.Y-c.Y) - (hh - radius)
	outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)
	return outside + inside - radius
}

// hitEllipse tests p against the ellipse inscribed in r. Unfilled ellipses
// are hit inside a ring of half width band around the outline.
func hitEllipse(p geom.Point, r geom.Rect, band float64, filled bool) bool {
	c := r.Center()
	rx, ry := r.Dx()/2, r.Dy()/2
	if !inEllipse(p, c, rx+band, ry+band) {
		return false
	}
	if filled || rx <= band || ry <= band {
		return true
	}
	return !inEllipse(p, c, rx-band, ry-band)
}

func inEllipse(p, c geom.Point, rx, ry float64) bool {
	if rx <= 0 || ry <= 0 {
		return false
	}
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}
