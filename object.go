package markup

import (
	"math"
	"slices"

	"github.com/esimov/markup/geom"
)

// ID identifies an annotation within a Document. Identifiers are never reused.
type ID uint64

// Kind enumerates the annotation variants.
type Kind int

const (
	Arrow Kind = iota
	Line
	Rectangle
	Ellipse
	Freehand
	Text
	Highlight
	Blur
	Pixelate
	Marker
	// Crop is only used for the transient crop preview. The document keeps
	// the committed crop rectangle apart from its objects.
	Crop
)

var kindNames = [...]string{"arrow", "line", "rectangle", "ellipse", "freehand",
	"text", "highlight", "blur", "pixelate", "marker", "crop"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Filter reports whether the kind samples the background instead of painting.
func (k Kind) Filter() bool {
	return k == Blur || k == Pixelate
}

// Shape is the geometry of an annotation, always in canvas space.
// The set of implementations is closed: Segment, Box, Path, Label and Badge.
type Shape interface {
	// Bounds returns the geometric bounding box, ignoring stroke width.
	Bounds() geom.Rect
	// Translate returns a copy of the shape moved by d.
	Translate(d geom.Point) Shape
	clone() Shape
	equal(Shape) bool
}

// Segment is the geometry of arrows and lines. Curve is the signed distance
// of the quadratic control point from the segment midpoint, along the normal.
type Segment struct {
	Start, End geom.Point
	Curve      float64
}

// Control returns the quadratic control point of the segment.
func (s Segment) Control() geom.Point {
	mid := s.Start.Add(s.End).Mul(0.5)
	d := s.End.Sub(s.Start)
	l := d.Len()
	if l == 0 || s.Curve == 0 {
		return mid
	}
	n := geom.Pt(-d.Y/l, d.X/l)
	// The curve passes through mid + n*Curve, so the control point sits twice as far.
	return mid.Add(n.Mul(2 * s.Curve))
}

// Polyline approximates the (possibly curved) segment with straight pieces.
func (s Segment) Polyline() []geom.Point {
	if s.Curve == 0 {
		return []geom.Point{s.Start, s.End}
	}
	const steps = 24
	c := s.Control()
	pts := make([]geom.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		u := 1 - t
		pts = append(pts, s.Start.Mul(u*u).Add(c.Mul(2*u*t)).Add(s.End.Mul(t*t)))
	}
	return pts
}

func (s Segment) Bounds() geom.Rect { return geom.Bounds(s.Polyline()) }

func (s Segment) Translate(d geom.Point) Shape {
	s.Start, s.End = s.Start.Add(d), s.End.Add(d)
	return s
}

func (s Segment) clone() Shape { return s }

func (s Segment) equal(o Shape) bool {
	t, ok := o.(Segment)
	return ok && s == t
}

// Box is the geometry of rectangles, ellipses and the region kinds.
type Box struct {
	Rect   geom.Rect
	Radius float64
}

func (b Box) Bounds() geom.Rect { return b.Rect.Canon() }

func (b Box) Translate(d geom.Point) Shape {
	b.Rect = b.Rect.Translate(d)
	return b
}

func (b Box) clone() Shape { return b }

func (b Box) equal(o Shape) bool {
	t, ok := o.(Box)
	return ok && b == t
}

// Path is an ordered sequence of freehand points.
type Path struct {
	Points []geom.Point
}

func (p Path) Bounds() geom.Rect { return geom.Bounds(p.Points) }

func (p Path) Translate(d geom.Point) Shape {
	pts := make([]geom.Point, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = pt.Add(d)
	}
	return Path{Points: pts}
}

func (p Path) clone() Shape {
	return Path{Points: slices.Clone(p.Points)}
}

func (p Path) equal(o Shape) bool {
	t, ok := o.(Path)
	return ok && slices.Equal(p.Points, t.Points)
}

// Label is a text annotation. Anchor is the top left corner of the text
// block. Extent caches the measured size of Content at Size and must be
// refreshed through Measure whenever either changes.
type Label struct {
	Anchor  geom.Point
	Content string
	Size    float64
	Extent  geom.Size
}

// Measure returns a copy of the label with a freshly computed extent.
func (l Label) Measure(m TextMeasurer) Label {
	l.Extent = measureLines(m, l.Content, l.Size)
	return l
}

func (l Label) Bounds() geom.Rect {
	return geom.Rect{Min: l.Anchor, Max: l.Anchor.Add(geom.Pt(l.Extent.W, l.Extent.H))}
}

func (l Label) Translate(d geom.Point) Shape {
	l.Anchor = l.Anchor.Add(d)
	return l
}

func (l Label) clone() Shape { return l }

func (l Label) equal(o Shape) bool {
	t, ok := o.(Label)
	return ok && l == t
}

// Badge is a numbered marker circle.
type Badge struct {
	Center geom.Point
	Number int
	Radius float64
}

func (b Badge) Bounds() geom.Rect {
	r := geom.Pt(b.Radius, b.Radius)
	return geom.Rect{Min: b.Center.Sub(r), Max: b.Center.Add(r)}
}

func (b Badge) Translate(d geom.Point) Shape {
	b.Center = b.Center.Add(d)
	return b
}

func (b Badge) clone() Shape { return b }

func (b Badge) equal(o Shape) bool {
	t, ok := o.(Badge)
	return ok && b == t
}

// Object is a single annotation. Its position in the Document defines the
// paint order.
type Object struct {
	ID    ID
	Kind  Kind
	Style Style
	Shape Shape
}

// Clone returns a deep copy of the object.
func (o Object) Clone() Object {
	if o.Shape != nil {
		o.Shape = o.Shape.clone()
	}
	return o
}

// Equal reports whether two objects are identical in identity, style and geometry.
func (o Object) Equal(p Object) bool {
	if o.ID != p.ID || o.Kind != p.Kind || o.Style != p.Style {
		return false
	}
	if o.Shape == nil || p.Shape == nil {
		return o.Shape == nil && p.Shape == nil
	}
	return o.Shape.equal(p.Shape)
}

// Bounds returns the area touched by the object when painted, stroke included.
func (o Object) Bounds() geom.Rect {
	if o.Shape == nil {
		return geom.Rect{}
	}
	r := o.Shape.Bounds()
	switch o.Kind {
	case Arrow:
		return r.Inset(-math.Max(o.Style.Width, arrowHeadLength(o.Style.Width)))
	case Line, Rectangle, Ellipse, Freehand:
		return r.Inset(-o.Style.Width / 2)
	}
	return r
}

// Translate returns a copy of the object moved by d.
func (o Object) Translate(d geom.Point) Object {
	if o.Shape != nil {
		o.Shape = o.Shape.Translate(d)
	}
	return o
}

// arrowHeadLength returns the length of an arrow head for a stroke width.
func arrowHeadLength(width float64) float64 {
	return math.Max(10, width*4)
}

// ArrowHead returns the two wing points of the arrow head at the end of s.
func ArrowHead(s Segment, width float64) (left, right geom.Point) {
	tip := s.End
	from := s.Start
	if s.Curve != 0 {
		from = s.Control()
	}
	angle := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	length := arrowHeadLength(width)
	const spread = math.Pi / 7
	left = geom.Pt(tip.X-length*math.Cos(angle-spread), tip.Y-length*math.Sin(angle-spread))
	right = geom.Pt(tip.X-length*math.Cos(angle+spread), tip.Y-length*math.Sin(angle+spread))
	return left, right
}
