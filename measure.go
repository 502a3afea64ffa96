package markup

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/esimov/markup/geom"
)

// TextMeasurer measures a single line of text rendered at the given font size.
type TextMeasurer interface {
	Measure(s string, size float64) geom.Size
}

// TextMeasurerFunc adapts a function to the TextMeasurer interface.
type TextMeasurerFunc func(s string, size float64) geom.Size

func (f TextMeasurerFunc) Measure(s string, size float64) geom.Size { return f(s, size) }

// EstimateMeasurer approximates text extents without a font, using an
// average glyph advance of 0.6 em and a line height of 1.2 em.
var EstimateMeasurer = TextMeasurerFunc(func(s string, size float64) geom.Size {
	return geom.Size{W: 0.6 * size * float64(utf8.RuneCountInString(s)), H: 1.2 * size}
})

// measureLines returns the extent of a multi line text block.
func measureLines(m TextMeasurer, s string, size float64) geom.Size {
	if m == nil {
		m = EstimateMeasurer
	}
	var ext geom.Size
	for _, line := range strings.Split(s, "\n") {
		sz := m.Measure(line, size)
		if sz.H == 0 {
			sz.H = 1.2 * size
		}
		ext.W = math.Max(ext.W, sz.W)
		ext.H += sz.H
	}
	return ext
}
