package render

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/esimov/markup"
	"github.com/esimov/markup/imop"
	"github.com/gogpu/gg"
)

// object draws a committed or transient object. alpha multiplies the
// opacity of its style.
func (f *frame) object(o markup.Object, alpha float64) {
	st := o.Style
	opacity := st.Opacity * alpha

	switch s := o.Shape.(type) {
	case markup.Segment:
		f.segment(o.Kind, s, st, opacity)
	case markup.Box:
		switch o.Kind {
		case markup.Blur, markup.Pixelate:
			f.filter(o, alpha)
		case markup.Highlight:
			f.highlight(s, st, opacity)
		case markup.Ellipse:
			r := f.view.RectToScreen(s.Rect.Canon())
			c := r.Center()
			f.dc.DrawEllipse(c.X, c.Y, r.Dx()/2, r.Dy()/2)
			f.paintShape(st, opacity)
		default:
			f.box(s, st, opacity)
		}
	case markup.Path:
		f.path(s, st, opacity)
	case markup.Label:
		f.label(s, st, opacity)
	case markup.Badge:
		f.badge(s, st, opacity)
	}
}

// preview draws the object under construction with a reduced opacity,
// outlined by a dashed box, and the text caret while editing a label.
func (f *frame) preview(o markup.Object, cursor int) {
	f.object(o, f.opts.PreviewOpacity)

	b := f.view.RectToScreen(o.Bounds())
	f.dc.SetColor(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xc0})
	f.dc.SetLineWidth(1)
	f.dc.SetDash(4, 4)
	f.dc.DrawRectangle(b.Min.X, b.Min.Y, b.Dx(), b.Dy())
	f.stroke()
	f.dc.ClearDash()

	if l, ok := o.Shape.(markup.Label); ok && cursor >= 0 {
		f.caret(l, o.Style, cursor)
	}
}

func (f *frame) segment(kind markup.Kind, s markup.Segment, st markup.Style, opacity float64) {
	a, b := f.view.ToScreen(s.Start), f.view.ToScreen(s.End)
	f.dc.MoveTo(a.X, a.Y)
	if s.Curve != 0 {
		c := f.view.ToScreen(s.Control())
		f.dc.QuadraticTo(c.X, c.Y, b.X, b.Y)
	} else {
		f.dc.LineTo(b.X, b.Y)
	}
	f.setStroke(st.Stroke, st.Width, opacity)
	f.stroke()

	if kind != markup.Arrow {
		return
	}
	left, right := markup.ArrowHead(s, st.Width*f.lineScale/f.scale)
	l, r := f.view.ToScreen(left), f.view.ToScreen(right)
	f.dc.MoveTo(b.X, b.Y)
	f.dc.LineTo(l.X, l.Y)
	f.dc.LineTo(r.X, r.Y)
	f.dc.ClosePath()
	f.dc.SetColor(withOpacity(st.Stroke, opacity))
	f.fill(true)
	f.stroke()
}

func (f *frame) box(s markup.Box, st markup.Style, opacity float64) {
	r := f.view.RectToScreen(s.Rect.Canon())
	radius := math.Min(s.Radius*f.scale, math.Min(r.Dx(), r.Dy())/2)
	if radius > 0 {
		f.dc.DrawRoundedRectangle(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), radius)
	} else {
		f.dc.DrawRectangle(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	}
	f.paintShape(st, opacity)
}

// paintShape fills the current path if the style asks for it and strokes
// its outline.
func (f *frame) paintShape(st markup.Style, opacity float64) {
	if st.Filled {
		f.dc.SetColor(withOpacity(st.Fill, opacity))
		f.fill(true)
	}
	f.setStroke(st.Stroke, st.Width, opacity)
	f.stroke()
}

// highlight mixes the fill colour with what lies below through the
// configured blend mode, like a highlighter pen.
func (f *frame) highlight(s markup.Box, st markup.Style, opacity float64) {
	r := f.view.RectToScreen(s.Rect.Canon())
	sr := pixelRect(r).Intersect(f.surface.Bounds())
	if sr.Empty() {
		return
	}
	pm := gg.NewPixmap(sr.Dx(), sr.Dy())
	dc := gg.NewContext(sr.Dx(), sr.Dy(), gg.WithPixmap(pm))
	defer func() {
		if err := dc.Close(); err != nil {
			markup.Logger().Debug("render: closing highlight layer", "error", err)
		}
	}()

	radius := math.Min(s.Radius*f.scale, math.Min(r.Dx(), r.Dy())/2)
	x, y := r.Min.X-float64(sr.Min.X), r.Min.Y-float64(sr.Min.Y)
	if radius > 0 {
		dc.DrawRoundedRectangle(x, y, r.Dx(), r.Dy(), radius)
	} else {
		dc.DrawRectangle(x, y, r.Dx(), r.Dy())
	}
	dc.SetColor(withOpacity(st.Fill, 1))
	if err := dc.Fill(); err != nil {
		markup.Logger().Debug("render: highlight fill", "error", err)
		return
	}
	if err := dc.FlushGPU(); err != nil {
		markup.Logger().Debug("render: flush", "error", err)
	}
	layer := &image.RGBA{Pix: pm.Data(), Stride: 4 * sr.Dx(), Rect: image.Rect(0, 0, sr.Dx(), sr.Dy())}

	f.flush()
	imop.InitOp().Draw(f.surface, sr, layer, image.Point{}, opacity, f.blend)
}

func (f *frame) path(s markup.Path, st markup.Style, opacity float64) {
	if len(s.Points) == 0 {
		return
	}
	if len(s.Points) == 1 {
		p := f.view.ToScreen(s.Points[0])
		f.dc.DrawCircle(p.X, p.Y, st.Width*f.lineScale/2)
		f.dc.SetColor(withOpacity(st.Stroke, opacity))
		f.fill(false)
		return
	}
	for i, pt := range s.Points {
		p := f.view.ToScreen(pt)
		if i == 0 {
			f.dc.MoveTo(p.X, p.Y)
			continue
		}
		f.dc.LineTo(p.X, p.Y)
	}
	f.setStroke(st.Stroke, st.Width, opacity)
	f.stroke()
}

func (f *frame) label(s markup.Label, st markup.Style, opacity float64) {
	face := f.font.Face(s.Size * f.scale)
	m := face.Metrics()
	origin := f.view.ToScreen(s.Anchor)

	f.dc.SetFont(face)
	f.dc.SetColor(withOpacity(st.Stroke, opacity))
	for i, line := range strings.Split(s.Content, "\n") {
		if line == "" {
			continue
		}
		f.dc.DrawString(line, origin.X, origin.Y+float64(i)*m.LineHeight()+m.Ascent)
	}
}

// caret draws the text cursor placed before the rune at offset cursor.
func (f *frame) caret(s markup.Label, st markup.Style, cursor int) {
	face := f.font.Face(s.Size * f.scale)
	lh := face.Metrics().LineHeight()
	origin := f.view.ToScreen(s.Anchor)

	line, col := 0, cursor
	for _, l := range strings.Split(s.Content, "\n") {
		n := utf8.RuneCountInString(l)
		if col <= n {
			var x float64
			if col > 0 {
				x = face.Advance(string([]rune(l)[:col]))
			}
			top := origin.Y + float64(line)*lh
			f.dc.MoveTo(origin.X+x, top)
			f.dc.LineTo(origin.X+x, top+lh)
			f.dc.SetColor(withOpacity(st.Stroke, 1))
			f.dc.SetLineWidth(math.Max(1, f.lineScale))
			f.stroke()
			return
		}
		col -= n + 1
		line++
	}
}

// badge draws a numbered marker: a filled disc with the number centred in
// a contrasting colour.
func (f *frame) badge(s markup.Badge, st markup.Style, opacity float64) {
	c := f.view.ToScreen(s.Center)
	radius := s.Radius * f.scale
	f.dc.DrawCircle(c.X, c.Y, radius)
	f.dc.SetColor(withOpacity(st.Fill, opacity))
	f.fill(false)

	num := strconv.Itoa(s.Number)
	face := f.font.Face(radius * 1.1)
	m := face.Metrics()
	f.dc.SetFont(face)
	f.dc.SetColor(withOpacity(contrast(st.Fill), opacity))
	f.dc.DrawString(num, c.X-face.Advance(num)/2, c.Y+(m.Ascent-m.Descent)/2)
}

func (f *frame) setStroke(c color.NRGBA, width, opacity float64) {
	f.dc.SetColor(withOpacity(c, opacity))
	f.dc.SetLineWidth(math.Max(width*f.lineScale, 0.5))
	f.dc.SetLineCap(gg.LineCapRound)
	f.dc.SetLineJoin(gg.LineJoinRound)
}

func (f *frame) stroke() {
	if err := f.dc.Stroke(); err != nil {
		markup.Logger().Debug("render: stroke", "error", err)
	}
}

// fill fills the current path, keeping it for a following stroke if
// preserve is set.
func (f *frame) fill(preserve bool) {
	var err error
	if preserve {
		err = f.dc.FillPreserve()
	} else {
		err = f.dc.Fill()
	}
	if err != nil {
		markup.Logger().Debug("render: fill", "error", err)
	}
}

func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * math.Max(0, math.Min(1, opacity))))
	return c
}

// contrast returns black or white, whichever reads better over c.
func contrast(c color.NRGBA) color.NRGBA {
	lum := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if lum > 150 {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
}
