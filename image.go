package markup

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes a background image and normalises it to packed,
// non-premultiplied RGBA with its origin at (0, 0).
func LoadImage(r io.Reader) (*image.NRGBA, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read the source image: %w", err)
	}
	if ctype := http.DetectContentType(data); !strings.HasPrefix(ctype, "image/") {
		return nil, fmt.Errorf("the source is not an image file: %s", ctype)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode the source image: %w", err)
	}
	img := imgToNRGBA(src)
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("empty source image: %w", ErrDegenerateRegion)
	}
	return img, nil
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	dst := image.NewNRGBA(srcBounds.Sub(srcBounds.Min))

	switch src := img.(type) {
	case *image.YCbCr:
		for y := 0; y < dst.Rect.Dy(); y++ {
			di := dst.PixOffset(0, y)
			for x := 0; x < dst.Rect.Dx(); x++ {
				sx, sy := srcBounds.Min.X+x, srcBounds.Min.Y+y
				yi, ci := src.YOffset(sx, sy), src.COffset(sx, sy)
				r, g, b := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		draw.Draw(dst, dst.Rect, img, srcBounds.Min, draw.Src)
	}
	return dst
}
