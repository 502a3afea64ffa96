package imop

import (
	"fmt"
	"image"
	"image/color"
	"slices"
)

// Op is a Porter-Duff composition operator.
type Op string

// SrcOver lays the source over the destination. DstOut keeps the
// destination only where the source is transparent, which punches holes
// into a layer.
const (
	SrcOver Op = "src_over"
	DstOut  Op = "dst_out"
)

var ops = []Op{SrcOver, DstOut}

// Composite holds the currently active composition operator.
type Composite struct {
	current Op
}

// InitOp returns a Composite using the source-over operator.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates a composition operator.
func (c *Composite) Set(op Op) error {
	if !slices.Contains(ops, op) {
		return fmt.Errorf("unsupported composite operation: %q", op)
	}
	c.current = op
	return nil
}

// Get returns the active composition operator.
func (c *Composite) Get() Op {
	return c.current
}

// Draw composites src onto the premultiplied dst inside r. The point sp of
// src is aligned with r.Min. The source alpha is scaled by opacity and the
// source colour is mixed with the backdrop through blend, if not nil.
func (c *Composite) Draw(dst *image.RGBA, r image.Rectangle, src image.Image, sp image.Point, opacity float64, blend *Blend) {
	r = r.Intersect(dst.Bounds())
	opacity = max(0, min(1, opacity))
	nrgba, _ := src.(*image.NRGBA)
	rgba, _ := src.(*image.RGBA)

	for y := r.Min.Y; y < r.Max.Y; y++ {
		sy := sp.Y + y - r.Min.Y
		di := dst.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			sx := sp.X + x - r.Min.X
			var s color.NRGBA
			if nrgba != nil {
				if (image.Point{sx, sy}).In(nrgba.Rect) {
					i := nrgba.PixOffset(sx, sy)
					s = color.NRGBA{nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2], nrgba.Pix[i+3]}
				}
			} else if rgba != nil {
				if (image.Point{sx, sy}).In(rgba.Rect) {
					i := rgba.PixOffset(sx, sy)
					s = unpremultiply(rgba.Pix[i : i+4 : i+4])
				}
			} else {
				s = color.NRGBAModel.Convert(src.At(sx, sy)).(color.NRGBA)
			}
			c.pixel(dst.Pix[di:di+4:di+4], s, opacity, blend)
			di += 4
		}
	}
}

// pixel composites the straight source colour s over the premultiplied
// destination pixel d in place.
func (c *Composite) pixel(d []uint8, s color.NRGBA, opacity float64, blend *Blend) {
	as := float64(s.A) / 255 * opacity
	ab := float64(d[3]) / 255

	var src, bd [3]float64
	for i, v := range [3]uint8{s.R, s.G, s.B} {
		src[i] = float64(v) / 255
	}
	for i := range bd {
		if ab > 0 {
			bd[i] = float64(d[i]) / 255 / ab
		}
	}
	if blend != nil && blend.Get() != Normal {
		for i := range src {
			src[i] = (1-ab)*src[i] + ab*blend.Mix(bd[i], src[i])
		}
	}

	// Porter-Duff: co = Fa*as*cs + Fb*ab*cb, ao = Fa*as + Fb*ab
	var fa, fb float64
	switch c.current {
	case SrcOver:
		fa, fb = 1, 1-as
	case DstOut:
		fa, fb = 0, 1-as
	}
	for i := range src {
		d[i] = clamp(fa*as*src[i] + fb*ab*bd[i])
	}
	d[3] = clamp(fa*as + fb*ab)
}

func unpremultiply(p []uint8) color.NRGBA {
	a := uint32(p[3])
	if a == 0 {
		return color.NRGBA{}
	}
	return color.NRGBA{
		R: uint8(min(255, (uint32(p[0])*255+a/2)/a)),
		G: uint8(min(255, (uint32(p[1])*255+a/2)/a)),
		B: uint8(min(255, (uint32(p[2])*255+a/2)/a)),
		A: p[3],
	}
}

func clamp(v float64) uint8 {
	return uint8(max(0, min(255, v*255+0.5)))
}
