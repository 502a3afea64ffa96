package render

import (
	"math"
	"sync"

	"github.com/esimov/markup/geom"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// maxFaces bounds the number of cached faces. Zooming and font size
// dragging produce a new size on almost every frame.
const maxFaces = 64

// FontMeasurer measures and draws text with a single font. It is safe for
// concurrent use.
type FontMeasurer struct {
	src *text.FontSource

	mu    sync.Mutex
	faces map[float64]text.Face
}

// NewFontMeasurer parses a TrueType or OpenType font.
func NewFontMeasurer(data []byte) (*FontMeasurer, error) {
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{src: src, faces: make(map[float64]text.Face)}, nil
}

var defaultMeasurer = sync.OnceValue(func() *FontMeasurer {
	m, err := NewFontMeasurer(goregular.TTF)
	if err != nil {
		panic("render: cannot parse the embedded Go font: " + err.Error())
	}
	return m
})

// DefaultMeasurer returns a measurer over the embedded Go Regular font.
func DefaultMeasurer() *FontMeasurer {
	return defaultMeasurer()
}

// Face returns the font face of the given size.
func (m *FontMeasurer) Face(size float64) text.Face {
	// Quarter point steps are indistinguishable on screen.
	size = math.Max(1, math.Round(size*4)/4)

	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[size]; ok {
		return f
	}
	if len(m.faces) >= maxFaces {
		clear(m.faces)
	}
	f := m.src.Face(size)
	m.faces[size] = f
	return f
}

// Measure returns the advance width and line height of a single line.
func (m *FontMeasurer) Measure(s string, size float64) geom.Size {
	f := m.Face(size)
	var w float64
	if s != "" {
		w = f.Advance(s)
	}
	return geom.Size{W: w, H: f.Metrics().LineHeight()}
}
