// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// The image/draw core package implements only the source-over-destination and source.
// This package adds the destination-out operator and the separable blend modes.
//
// The renderer lays filtered background patches and highlighter layers over
// the surface with it, and cuts the crop window out of the shade layer.
package imop

import (
	"fmt"
	"slices"
)

// BlendMode is a separable blend function.
type BlendMode string

const (
	Normal   BlendMode = "normal"
	Darken   BlendMode = "darken"
	Lighten  BlendMode = "lighten"
	Multiply BlendMode = "multiply"
	Screen   BlendMode = "screen"
	Overlay  BlendMode = "overlay"
)

var blendModes = []BlendMode{Normal, Darken, Lighten, Multiply, Screen, Overlay}

// Blend holds the currently active blend mode.
type Blend struct {
	mode BlendMode
}

// NewBlend initializes a new Blend using the normal mode.
func NewBlend() *Blend {
	return &Blend{mode: Normal}
}

// Set activates one of the supported blend modes.
func (b *Blend) Set(mode BlendMode) error {
	if !slices.Contains(blendModes, mode) {
		return fmt.Errorf("unsupported blend mode: %q", mode)
	}
	b.mode = mode
	return nil
}

// Get returns the currently active blend mode.
func (b *Blend) Get() BlendMode {
	if b == nil || b.mode == "" {
		return Normal
	}
	return b.mode
}

// Mix returns the blended value of the backdrop cb and source cs,
// both straight (non premultiplied) and normalised to [0, 1].
func (b *Blend) Mix(cb, cs float64) float64 {
	switch b.Get() {
	case Darken:
		return min(cb, cs)
	case Lighten:
		return max(cb, cs)
	case Multiply:
		return cb * cs
	case Screen:
		return cb + cs - cb*cs
	case Overlay:
		if cb <= 0.5 {
			return 2 * cb * cs
		}
		return 1 - 2*(1-cb)*(1-cs)
	}
	return cs
}
