package render

import (
	"fmt"
	"image/color"

	"github.com/esimov/markup/imop"
)

// Quality selects the interpolator used to sample the background image.
type Quality int

const (
	Bilinear Quality = iota
	Nearest
)

func (q Quality) String() string {
	switch q {
	case Bilinear:
		return "bilinear"
	case Nearest:
		return "nearest"
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality returns the quality named by s.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "bilinear":
		return Bilinear, nil
	case "nearest":
		return Nearest, nil
	}
	return 0, fmt.Errorf("unsupported sampling quality: %q", s)
}

// Options holds the compositor settings.
type Options struct {
	Quality Quality
	// BlurRadius is the stack blur radius of blur regions, in canvas pixels.
	BlurRadius int
	// PixelSize is the cell size of pixelate regions, in canvas pixels.
	PixelSize int
	// PreviewOpacity is applied on top of the style opacity of the object
	// under construction.
	PreviewOpacity float64
	// ShadeOpacity darkens the area outside the crop rectangle.
	ShadeOpacity float64
	// Backdrop fills the surface around the background image.
	Backdrop color.NRGBA
	// HandleSize is the side of the selection handles, in screen pixels.
	HandleSize float64
	// HighlightBlend mixes highlighter regions with what lies below.
	HighlightBlend imop.BlendMode
}

// DefaultOptions returns the default compositor settings.
func DefaultOptions() Options {
	return Options{
		Quality:        Bilinear,
		BlurRadius:     10,
		PixelSize:      12,
		PreviewOpacity: 0.6,
		ShadeOpacity:   0.5,
		Backdrop:       color.NRGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff},
		HandleSize:     8,
		HighlightBlend: imop.Multiply,
	}
}

// Validate reports whether the options are usable.
func (o Options) Validate() error {
	switch {
	case o.BlurRadius < 1:
		return fmt.Errorf("blur radius should be at least 1, got %d", o.BlurRadius)
	case o.PixelSize < 1:
		return fmt.Errorf("pixel size should be at least 1, got %d", o.PixelSize)
	case o.PreviewOpacity < 0 || o.PreviewOpacity > 1:
		return fmt.Errorf("preview opacity out of range: %v", o.PreviewOpacity)
	case o.ShadeOpacity < 0 || o.ShadeOpacity > 1:
		return fmt.Errorf("shade opacity out of range: %v", o.ShadeOpacity)
	case o.HandleSize <= 0:
		return fmt.Errorf("handle size should be positive, got %v", o.HandleSize)
	}
	if err := imop.NewBlend().Set(o.HighlightBlend); err != nil {
		return err
	}
	return nil
}
