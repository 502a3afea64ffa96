// Package render rasterizes annotated documents, both for the live view
// and for export.
package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/esimov/markup"
	"github.com/esimov/markup/geom"
	"github.com/esimov/markup/imop"
	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Compositor paints a Document, and the transient state of the editing
// session, onto a raster surface. It never modifies the documents it paints
// and is safe for concurrent use.
type Compositor struct {
	opts    Options
	font    *FontMeasurer
	filters *filterCache
	blend   *imop.Blend
}

// NewCompositor returns a compositor. A nil font selects DefaultMeasurer.
func NewCompositor(opts Options, font *FontMeasurer) (*Compositor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if font == nil {
		font = DefaultMeasurer()
	}
	blend := imop.NewBlend()
	if err := blend.Set(opts.HighlightBlend); err != nil {
		return nil, err
	}
	return &Compositor{opts: opts, font: font, filters: newFilterCache(), blend: blend}, nil
}

// Options returns the compositor settings.
func (c *Compositor) Options() Options { return c.opts }

// Render paints the document and the preview into a surface of the given
// viewport size, seen through view.
func (c *Compositor) Render(doc *markup.Document, view geom.Transform, viewport image.Point, p markup.Preview) *image.RGBA {
	img, _ := c.RenderContext(context.Background(), doc, view, viewport, p)
	return img
}

// RenderContext is like Render but gives up between objects once ctx is
// done, returning the context error.
func (c *Compositor) RenderContext(ctx context.Context, doc *markup.Document, view geom.Transform, viewport image.Point, p markup.Preview) (*image.RGBA, error) {
	f := c.newFrame(max(1, viewport.X), max(1, viewport.Y), view, doc.Background(), true)
	defer f.close()

	f.pm.Clear(gg.FromColor(c.opts.Backdrop))
	if err := view.Validate(); err != nil {
		markup.Logger().Warn("render: invalid view transform", "error", err)
		return f.surface, nil
	}
	if err := f.paint(ctx, doc, p); err != nil {
		return nil, err
	}
	f.crop(doc, p)
	f.selection(doc, p)
	return f.finish(), nil
}

// RenderForExport paints the document at full resolution over its export
// bounds: the crop rectangle if any, the whole background otherwise. No
// transient state is painted.
func (c *Compositor) RenderForExport(doc *markup.Document) *image.RGBA {
	img, _ := c.RenderForExportContext(context.Background(), doc)
	return img
}

// RenderForExportContext is like RenderForExport but honours ctx.
func (c *Compositor) RenderForExportContext(ctx context.Context, doc *markup.Document) (*image.RGBA, error) {
	r := pixelRect(doc.ExportBounds()).Intersect(doc.Background().Bounds())
	view, err := geom.NewTransform(1, 1)
	if err != nil {
		return nil, err
	}
	view.Offset = geom.Pt(-float64(r.Min.X), -float64(r.Min.Y))

	f := c.newFrame(max(1, r.Dx()), max(1, r.Dy()), view, doc.Background(), false)
	defer f.close()
	if err := f.paint(ctx, doc, markup.Preview{Cursor: -1}); err != nil {
		return nil, err
	}
	return f.finish(), nil
}

// frame is the state of a single render pass.
type frame struct {
	*Compositor
	dc      *gg.Context
	pm      *gg.Pixmap
	surface *image.RGBA
	view    geom.Transform
	scale   float64
	// lineScale converts stroke widths to device pixels. Widths keep their
	// screen size whatever the zoom.
	lineScale   float64
	bg          *image.NRGBA
	interactive bool
}

func (c *Compositor) newFrame(w, h int, view geom.Transform, bg *image.NRGBA, interactive bool) *frame {
	pm := gg.NewPixmap(w, h)
	return &frame{
		Compositor: c,
		pm:         pm,
		dc:         gg.NewContext(w, h, gg.WithPixmap(pm)),
		// The surface shares its pixels with the pixmap, so raster
		// operations and vector drawing land in the same buffer.
		surface:     &image.RGBA{Pix: pm.Data(), Stride: 4 * w, Rect: image.Rect(0, 0, w, h)},
		view:        view,
		scale:       view.Scale(),
		lineScale:   view.DPR,
		bg:          bg,
		interactive: interactive,
	}
}

func (f *frame) close() {
	if err := f.dc.Close(); err != nil {
		markup.Logger().Debug("render: closing context", "error", err)
	}
}

// flush makes the pending vector drawing visible in the surface.
func (f *frame) flush() {
	if err := f.dc.FlushGPU(); err != nil {
		markup.Logger().Debug("render: flush", "error", err)
	}
}

func (f *frame) finish() *image.RGBA {
	f.flush()
	return f.surface
}

// paint draws the background, the committed objects in paint order and the
// object under construction.
func (f *frame) paint(ctx context.Context, doc *markup.Document, p markup.Preview) error {
	f.background()

	hidden := markup.ID(0)
	if p.Object != nil {
		hidden = p.Replaces
	}
	for _, o := range doc.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if o.Kind == markup.Crop || (hidden != 0 && o.ID == hidden) {
			continue
		}
		f.object(o, 1)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Object != nil && !p.Crop && f.interactive {
		f.preview(*p.Object, p.Cursor)
	}
	return nil
}

// background samples the background image through the view transform.
func (f *frame) background() {
	m := f.view.Affine()
	if m.A == 1 && m.D == 1 && m.B == 0 && m.C == 0 && m.E == math.Trunc(m.E) && m.F == math.Trunc(m.F) {
		off := image.Pt(int(m.E), int(m.F))
		draw.Draw(f.surface, f.bg.Bounds().Add(off), f.bg, f.bg.Bounds().Min, draw.Over)
		return
	}
	f.interpolator().Transform(f.surface, aff3(m), f.bg, f.bg.Bounds(), xdraw.Over, nil)
}

func (f *frame) interpolator() xdraw.Interpolator {
	if f.opts.Quality == Nearest {
		return xdraw.NearestNeighbor
	}
	return xdraw.BiLinear
}

// filter composites the filtered background patch of a blur or pixelate
// region at its position in paint order.
func (f *frame) filter(o markup.Object, alpha float64) {
	amount := f.opts.BlurRadius
	if o.Kind == markup.Pixelate {
		amount = f.opts.PixelSize
	}
	region := pixelRect(o.Shape.Bounds()).Intersect(f.bg.Bounds())
	patch := f.filters.patch(f.bg, o.Kind, region, amount)
	if patch == nil {
		return
	}
	sr := pixelRect(f.view.RectToScreen(geom.RectXYWH(
		float64(region.Min.X), float64(region.Min.Y), float64(region.Dx()), float64(region.Dy()),
	))).Intersect(f.surface.Bounds())
	if sr.Empty() {
		return
	}

	tmp := image.NewNRGBA(sr)
	m := f.view.Affine().Mul(geom.Translation(float64(region.Min.X), float64(region.Min.Y)))
	f.interpolator().Transform(tmp, aff3(m), patch, patch.Bounds(), xdraw.Src, nil)

	f.flush()
	imop.InitOp().Draw(f.surface, sr, tmp, sr.Min, o.Style.Opacity*alpha, nil)
}

// crop shades the area outside the crop rectangle, the one being edited or
// the committed one.
func (f *frame) crop(doc *markup.Document, p markup.Preview) {
	var r geom.Rect
	editing := p.Crop && p.Object != nil
	switch {
	case editing:
		r = p.Object.Shape.Bounds()
	case doc.Crop() != nil:
		r = *doc.Crop()
	default:
		return
	}
	sr := pixelRect(f.view.RectToScreen(r))
	f.flush()

	b := f.surface.Bounds()
	shade := image.NewRGBA(b)
	a := uint8(f.opts.ShadeOpacity*0xff + 0.5)
	for i := 3; i < len(shade.Pix); i += 4 {
		shade.Pix[i] = a
	}
	cut := imop.InitOp()
	if err := cut.Set(imop.DstOut); err != nil {
		markup.Logger().Debug("render: crop shade", "error", err)
		return
	}
	cut.Draw(shade, sr, image.NewUniform(color.NRGBA{A: 0xff}), image.Point{}, 1, nil)
	imop.InitOp().Draw(f.surface, b, shade, b.Min, 1, nil)

	rr := f.view.RectToScreen(r)
	f.dc.SetColor(color.White)
	f.dc.SetLineWidth(1)
	f.dc.SetDash(6, 4)
	f.dc.DrawRectangle(rr.Min.X, rr.Min.Y, rr.Dx(), rr.Dy())
	f.stroke()
	f.dc.ClearDash()

	if editing {
		for _, h := range markup.Handles(markup.Object{Shape: markup.Box{Rect: r}}) {
			f.handle(h.Pos)
		}
	}
}

// selection draws the handles of the selected object at a constant screen
// size.
func (f *frame) selection(doc *markup.Document, p markup.Preview) {
	if p.Selection == 0 || p.Crop {
		return
	}
	o, err := doc.Get(p.Selection)
	if p.Object != nil && p.Object.ID == p.Selection {
		o, err = *p.Object, nil
	}
	if err != nil {
		return
	}
	for _, h := range markup.Handles(o) {
		f.handle(h.Pos)
	}
}

func (f *frame) handle(pos geom.Point) {
	s := f.view.ToScreen(pos)
	size := f.opts.HandleSize
	f.dc.DrawRectangle(s.X-size/2, s.Y-size/2, size, size)
	f.dc.SetColor(color.White)
	f.fill(true)
	f.dc.SetColor(color.NRGBA{R: 0x1e, G: 0x6f, B: 0xd9, A: 0xff})
	f.dc.SetLineWidth(1)
	f.stroke()
}

// aff3 converts a canvas to screen affine into the row major matrix used
// by x/image/draw.
func aff3(m geom.Affine) f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}
