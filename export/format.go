// Package export encodes rendered documents and delivers the encoded bytes
// to their destinations.
package export

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Format is a raster image encoding.
type Format int

const (
	PNG Format = iota
	JPEG
	BMP
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	case BMP:
		return "bmp"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the usual file extension of the format.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + f.String()
}

// ParseFormat returns the format named by s.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	}
	return 0, fmt.Errorf("unsupported image format: %q", s)
}

// FormatFromPath returns the format matching the file extension of path.
// Paths without an extension are encoded as PNG.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return PNG, nil
	}
	return ParseFormat(ext[1:])
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case BMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format: %v", f)
}
