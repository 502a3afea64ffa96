package markup

import (
	"testing"

	"github.com/esimov/markup/geom"
	"github.com/stretchr/testify/assert"
)

func TestHit_OutlineVersusFilled(t *testing.T) {
	assert := assert.New(t)

	rect := rectObject(Rectangle, 10, 10, 90, 90)
	assert.True(rect.Hit(geom.Pt(10, 50), 2))
	assert.True(rect.Hit(geom.Pt(8, 50), 2))
	assert.False(rect.Hit(geom.Pt(50, 50), 2))

	rect.Style.Filled = true
	assert.True(rect.Hit(geom.Pt(50, 50), 2))
	assert.False(rect.Hit(geom.Pt(0, 0), 2))

	ell := rectObject(Ellipse, 0, 0, 100, 50)
	assert.True(ell.Hit(geom.Pt(0, 25), 2))
	assert.True(ell.Hit(geom.Pt(50, 1), 2))
	assert.False(ell.Hit(geom.Pt(50, 25), 2))
	assert.False(ell.Hit(geom.Pt(2, 2), 2))
	ell.Style.Filled = true
	assert.True(ell.Hit(geom.Pt(50, 25), 2))

	blur := rectObject(Blur, 0, 0, 30, 30)
	assert.True(blur.Hit(geom.Pt(15, 15), 2))
}

func TestHit_RoundedRectangleCorners(t *testing.T) {
	assert := assert.New(t)

	rect := rectObject(Rectangle, 10, 10, 90, 90)
	rect.Shape = Box{Rect: rect.Shape.(Box).Rect, Radius: 12}
	assert.False(rect.Hit(geom.Pt(10, 10), 1))
	assert.False(rect.Hit(geom.Pt(12, 12), 1))
	// The arc passes through (22-12/sqrt2, 22-12/sqrt2).
	assert.True(rect.Hit(geom.Pt(13.6, 13.6), 1))
	assert.True(rect.Hit(geom.Pt(10, 50), 1))
	assert.False(rect.Hit(geom.Pt(50, 50), 1))

	rect.Style.Filled = true
	assert.False(rect.Hit(geom.Pt(11, 11), 1))
	assert.True(rect.Hit(geom.Pt(50, 50), 1))
}

func TestHit_SegmentsAndPaths(t *testing.T) {
	assert := assert.New(t)

	line := Object{Kind: Line, Style: Style{Width: 2}, Shape: Segment{Start: geom.Pt(0, 0), End: geom.Pt(100, 0)}}
	assert.True(line.Hit(geom.Pt(50, 3), 2))
	assert.False(line.Hit(geom.Pt(50, 10), 2))
	assert.False(line.Hit(geom.Pt(110, 0), 2))

	curved := line
	curved.Shape = Segment{Start: geom.Pt(0, 0), End: geom.Pt(100, 0), Curve: 20}
	assert.True(curved.Hit(geom.Pt(50, 20), 2))
	assert.False(curved.Hit(geom.Pt(50, 0), 2))

	path := Object{Kind: Freehand, Style: Style{Width: 4}, Shape: Path{Points: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}}}}
	assert.True(path.Hit(geom.Pt(10, 9), 1))
	assert.False(path.Hit(geom.Pt(10, 0), 1))

	badge := Object{Kind: Marker, Shape: Badge{Center: geom.Pt(50, 50), Number: 1, Radius: 10}}
	assert.True(badge.Hit(geom.Pt(57, 57), 1))
	assert.False(badge.Hit(geom.Pt(70, 70), 1))
}

func TestHit_ToleranceFollowsZoom(t *testing.T) {
	assert := assert.New(t)

	d := NewDocument(newBackground())
	id := d.Add(Object{Kind: Line, Shape: Segment{Start: geom.Pt(0, 50), End: geom.Pt(200, 50)}})

	near, _ := geom.NewTransform(1, 1)
	far, _ := geom.NewTransform(4, 1)
	p := geom.Pt(100, 53)

	_, ok := HitTest(d, p, far.CanvasLength(6))
	assert.False(ok)
	got, ok := HitTest(d, p, near.CanvasLength(6))
	assert.True(ok)
	assert.Equal(id, got)
}

func TestHandles(t *testing.T) {
	assert := assert.New(t)

	line := Object{Kind: Line, Shape: Segment{Start: geom.Pt(0, 0), End: geom.Pt(10, 0)}}
	hs := Handles(line)
	assert.Equal(HandleStart, hs[0].Handle)
	assert.Equal(HandleEnd, hs[1].Handle)
	assert.Equal(geom.Pt(10, 0), hs[1].Pos)

	rect := rectObject(Rectangle, 0, 0, 10, 20)
	assert.Len(Handles(rect), 8)
	assert.Equal(HandleBottomRight, HandleAt(rect, geom.Pt(11, 19), 2))
	assert.Equal(HandleTop, HandleAt(rect, geom.Pt(5, 0), 2))
	assert.Equal(HandleNone, HandleAt(rect, geom.Pt(5, 10), 2))

	label := Object{Kind: Text, Shape: Label{Anchor: geom.Pt(5, 5), Content: "hi", Size: 10}.Measure(EstimateMeasurer)}
	hs = Handles(label)
	assert.Equal([]Handle{HandleMove, HandleFontSize}, []Handle{hs[0].Handle, hs[1].Handle})
}

func TestDragHandle(t *testing.T) {
	assert := assert.New(t)

	rect := rectObject(Rectangle, 0, 0, 10, 10)
	got := DragHandle(rect, HandleBottomRight, geom.Pt(10, 10), geom.Pt(30, 25), nil)
	assert.Equal(geom.RectXYWH(0, 0, 30, 25), got.Shape.(Box).Rect)
	assert.Equal(geom.RectXYWH(0, 0, 10, 10), rect.Shape.(Box).Rect)

	got = DragHandle(rect, HandleMove, geom.Pt(5, 5), geom.Pt(8, 1), nil)
	assert.Equal(geom.RectXYWH(3, -4, 10, 10), got.Shape.(Box).Rect)

	path := Object{Kind: Freehand, Shape: Path{Points: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}}}
	got = DragHandle(path, HandleBottomRight, geom.Pt(10, 10), geom.Pt(20, 20), nil)
	assert.Equal([]geom.Point{{X: 0, Y: 0}, {X: 20, Y: 20}}, got.Shape.(Path).Points)

	label := Object{Kind: Text, Shape: Label{Content: "abc", Size: 10}.Measure(EstimateMeasurer)}
	got = DragHandle(label, HandleFontSize, geom.Pt(18, 12), geom.Pt(18, 24), EstimateMeasurer)
	assert.InDelta(20.0, got.Shape.(Label).Size, 1e-9)
	assert.InDelta(24.0, got.Shape.(Label).Extent.H, 1e-9)
}
