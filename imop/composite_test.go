package imop

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func opaque(r image.Rectangle, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(r)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestComposite_Set(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	assert.Equal(SrcOver, op.Get())
	assert.Error(op.Set("not_supported"))
	assert.Equal(SrcOver, op.Get())
	assert.NoError(op.Set(DstOut))
	assert.Equal(DstOut, op.Get())
}

func TestComposite_SrcOverRegion(t *testing.T) {
	assert := assert.New(t)

	dst := opaque(image.Rect(0, 0, 10, 10), color.RGBA{R: 255, A: 255})
	src := image.NewUniform(color.NRGBA{B: 255, A: 255})

	op := InitOp()
	op.Draw(dst, image.Rect(2, 2, 4, 4), src, image.Point{}, 0.5, nil)

	assert.Equal(color.RGBA{R: 255, A: 255}, dst.RGBAAt(0, 0))
	assert.Equal(color.RGBA{R: 128, B: 128, A: 255}, dst.RGBAAt(2, 2))
	assert.Equal(color.RGBA{R: 128, B: 128, A: 255}, dst.RGBAAt(3, 3))
	assert.Equal(color.RGBA{R: 255, A: 255}, dst.RGBAAt(4, 4))
}

func TestComposite_SourceOffset(t *testing.T) {
	assert := assert.New(t)

	dst := opaque(image.Rect(0, 0, 4, 4), color.RGBA{A: 255})
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(3, 3, color.NRGBA{G: 255, A: 255})

	op := InitOp()
	op.Draw(dst, image.Rect(0, 0, 2, 2), src, image.Pt(2, 2), 1, nil)
	assert.Equal(color.RGBA{G: 255, A: 255}, dst.RGBAAt(1, 1))
	assert.Equal(color.RGBA{A: 255}, dst.RGBAAt(0, 0))
}

func TestComposite_MultiplyBlend(t *testing.T) {
	assert := assert.New(t)

	dst := opaque(image.Rect(0, 0, 1, 1), color.RGBA{R: 255, G: 128, B: 0, A: 255})
	src := image.NewUniform(color.NRGBA{R: 255, G: 255, B: 0, A: 255})

	b := NewBlend()
	assert.NoError(b.Set(Multiply))
	InitOp().Draw(dst, dst.Bounds(), src, image.Point{}, 1, b)
	assert.Equal(color.RGBA{R: 255, G: 128, B: 0, A: 255}, dst.RGBAAt(0, 0))
}

func TestComposite_DstOut(t *testing.T) {
	assert := assert.New(t)

	dst := opaque(image.Rect(0, 0, 1, 1), color.RGBA{R: 200, G: 200, B: 200, A: 255})
	op := InitOp()
	assert.NoError(op.Set(DstOut))
	op.Draw(dst, dst.Bounds(), image.NewUniform(color.NRGBA{A: 255}), image.Point{}, 1, nil)
	assert.Equal(color.RGBA{}, dst.RGBAAt(0, 0))
}

func TestComposite_PremultipliedSource(t *testing.T) {
	assert := assert.New(t)

	dst := opaque(image.Rect(0, 0, 2, 1), color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{A: 128})

	InitOp().Draw(dst, dst.Bounds(), src, image.Point{}, 1, nil)
	assertNear := func(want, got uint8) { assert.InDelta(int(want), int(got), 1) }
	got := dst.RGBAAt(0, 0)
	assertNear(127, got.R)
	assertNear(255, got.A)
	assert.Equal(color.RGBA{R: 255, G: 255, B: 255, A: 255}, dst.RGBAAt(1, 0))
}
