package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/esimov/markup"
	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestStackblur_UniformImageIsUnchanged(t *testing.T) {
	assert := assert.New(t)

	c := color.NRGBA{R: 90, G: 160, B: 30, A: 255}
	img := Stackblur(solid(12, 7, c), 3)
	for y := range 7 {
		for x := range 12 {
			assert.Equal(c, img.NRGBAAt(x, y))
		}
	}
}

func TestStackblur_SpreadsImpulse(t *testing.T) {
	assert := assert.New(t)

	img := solid(3, 3, color.NRGBA{A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})
	Stackblur(img, 1)

	assert.Less(img.NRGBAAt(1, 1).R, uint8(255))
	assert.Greater(img.NRGBAAt(0, 0).R, uint8(0))
	assert.Greater(img.NRGBAAt(1, 1).R, img.NRGBAAt(0, 0).R)
	assert.Equal(uint8(255), img.NRGBAAt(0, 0).A)
}

func TestStackblur_ZeroRadius(t *testing.T) {
	img := solid(2, 2, color.NRGBA{R: 1, A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, A: 255})
	Stackblur(img, 0)
	assert.Equal(t, uint8(200), img.NRGBAAt(0, 0).R)
}

func TestPixelateRegion(t *testing.T) {
	assert := assert.New(t)

	bg := solid(8, 8, color.NRGBA{A: 255})
	for y := range 8 {
		for x := 2; x < 4; x++ {
			bg.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	out := pixelateRegion(bg, image.Rect(0, 0, 4, 4), 4)
	assert.Equal(image.Rect(0, 0, 4, 4), out.Bounds())

	first := out.NRGBAAt(0, 0)
	assert.InDelta(127, int(first.R), 3)
	for y := range 4 {
		for x := range 4 {
			assert.Equal(first, out.NRGBAAt(x, y))
		}
	}

	// A region that is not a multiple of the cell size keeps its size.
	out = pixelateRegion(bg, image.Rect(1, 1, 6, 4), 4)
	assert.Equal(image.Rect(0, 0, 5, 3), out.Bounds())
}

func TestFilterCache(t *testing.T) {
	assert := assert.New(t)

	bg := solid(40, 40, color.NRGBA{R: 10, A: 255})
	fc := newFilterCache()

	a := fc.patch(bg, markup.Blur, image.Rect(0, 0, 10, 10), 2)
	b := fc.patch(bg, markup.Blur, image.Rect(0, 0, 10, 10), 2)
	assert.Same(a, b)

	c := fc.patch(bg, markup.Pixelate, image.Rect(0, 0, 10, 10), 2)
	assert.NotSame(a, c)

	assert.Nil(fc.patch(bg, markup.Blur, image.Rect(50, 50, 60, 60), 2))
	assert.Nil(fc.patch(bg, markup.Rectangle, image.Rect(0, 0, 10, 10), 2))

	for i := range maxPatches + 5 {
		fc.patch(bg, markup.Blur, image.Rect(0, 0, 1+i%39, 1), 1)
	}
	assert.LessOrEqual(len(fc.patches), maxPatches)
}
