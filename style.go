package markup

import "image/color"

// Style holds the paint attributes of an annotation. Only the attributes
// meaningful to an object's kind are used when rendering it.
type Style struct {
	Stroke  color.NRGBA
	Fill    color.NRGBA
	Width   float64
	Opacity float64
	Filled  bool
}

// WithColor returns a copy of the style using c for both stroke and fill.
func (s Style) WithColor(c color.NRGBA) Style {
	s.Stroke, s.Fill = c, c
	return s
}

// Scaled returns a copy of the style with the stroke width multiplied by k.
func (s Style) Scaled(k float64) Style {
	s.Width *= k
	return s
}
