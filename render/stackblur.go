// Go implementation of StackBlur algorithm described here:
// http://incubator.quasimondo.com/processing/fast_blur_deluxe.php

package render

import (
	"image"

	"github.com/esimov/markup/utils"
)

// Stackblur blurs img in place with a triangular kernel of the given radius,
// a fast approximation of a gaussian blur, and returns it. Pixels outside
// the image repeat the nearest edge pixel.
func Stackblur(img *image.NRGBA, radius int) *image.NRGBA {
	if radius < 1 {
		return img
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return img
	}
	line := make([]uint8, 4*max(w, h))

	for y := range h {
		blurLine(img.Pix[y*img.Stride:], line, w, 4, radius)
	}
	for x := range w {
		blurLine(img.Pix[x*4:], line, h, img.Stride, radius)
	}
	return img
}

// blurLine blurs n pixels of pix spaced step bytes apart. line is scratch
// space holding an unmodified copy of the input.
func blurLine(pix, line []uint8, n, step, radius int) {
	for i := range n {
		copy(line[i*4:i*4+4], pix[i*step:i*step+4])
	}
	at := func(i, c int) uint32 {
		return uint32(line[utils.Clamp(i, 0, n-1)*4+c])
	}
	div := uint32((radius + 1) * (radius + 1))

	for c := range 4 {
		// sum is the weighted stack, in holds the pixels right of the
		// centre, out the centre and the pixels left of it.
		var sum, in, out uint32
		for k := -radius; k <= radius; k++ {
			v := at(k, c)
			sum += uint32(radius+1-utils.Abs(k)) * v
			if k > 0 {
				in += v
			} else {
				out += v
			}
		}
		for x := range n {
			pix[x*step+c] = uint8(sum / div)

			sum -= out
			out -= at(x-radius, c)
			in += at(x+radius+1, c)
			sum += in

			mid := at(x+1, c)
			out += mid
			in -= mid
		}
	}
}
