package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/esimov/markup"
	"github.com/esimov/markup/geom"
	"github.com/esimov/markup/render"
	"github.com/stretchr/testify/assert"
)

func background(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func newExporter(t *testing.T, f Format, sinks ...Sink) *Exporter {
	t.Helper()
	comp, err := render.NewCompositor(render.DefaultOptions(), nil)
	assert.NoError(t, err)
	return NewExporter(comp, f, sinks...)
}

func TestFormat(t *testing.T) {
	assert := assert.New(t)

	f, err := FormatFromPath("~/shots/out.JPG")
	assert.NoError(err)
	assert.Equal(JPEG, f)

	f, err = FormatFromPath("out")
	assert.NoError(err)
	assert.Equal(PNG, f)

	_, err = FormatFromPath("out.gif")
	assert.Error(err)

	assert.Equal(".jpg", JPEG.Ext())
	assert.Equal(".bmp", BMP.Ext())
}

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	img := background(8, 4, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	for _, f := range []Format{PNG, JPEG, BMP} {
		var buf bytes.Buffer
		assert.NoError(Encode(&buf, img, f))

		got, name, err := image.Decode(&buf)
		assert.NoError(err, f.String())
		assert.Equal(f.String(), name)
		assert.Equal(img.Bounds(), got.Bounds())
	}
	assert.Error(Encode(&bytes.Buffer{}, img, Format(9)))
}

func TestFileSink(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "nested", "dir", "out.png")
	assert.NoError(FileSink{Path: path}.Deliver([]byte("data"), PNG))

	got, err := os.ReadFile(path)
	assert.NoError(err)
	assert.Equal([]byte("data"), got)
}

func TestNewSink(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	s := NewSink("-", &buf)
	assert.NoError(s.Deliver([]byte("png bytes"), PNG))
	assert.Equal("png bytes", buf.String())

	assert.Equal(FileSink{Path: "out.png"}, NewSink("out.png", &buf))
}

func TestCommandSink(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "clip")
	assert.NoError(CommandSink{Command: "cat > " + path}.Deliver([]byte("clipboard"), PNG))
	got, err := os.ReadFile(path)
	assert.NoError(err)
	assert.Equal("clipboard", string(got))

	err = CommandSink{Command: "echo nope >&2; exit 3"}.Deliver(nil, PNG)
	assert.ErrorContains(err, "nope")
}

func TestExporter_DeliversToEverySink(t *testing.T) {
	assert := assert.New(t)

	var got [][]byte
	capture := SinkFunc(func(data []byte, f Format) error {
		assert.Equal(PNG, f)
		got = append(got, data)
		return nil
	})
	boom := errors.New("boom")
	failing := SinkFunc(func([]byte, Format) error { return boom })

	doc := markup.NewDocument(background(10, 10, color.NRGBA{B: 255, A: 255}))
	err := newExporter(t, PNG, failing, capture).Export(context.Background(), doc)
	assert.ErrorIs(err, boom)
	assert.Len(got, 1)

	img, err := png.Decode(bytes.NewReader(got[0]))
	assert.NoError(err)
	assert.Equal(image.Rect(0, 0, 10, 10), img.Bounds())
}

func TestExporter_StartUsesSnapshot(t *testing.T) {
	assert := assert.New(t)

	var data []byte
	capture := SinkFunc(func(b []byte, _ Format) error {
		data = b
		return nil
	})
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	doc := markup.NewDocument(background(20, 20, white))
	crop := geom.RectXYWH(0, 0, 10, 10)
	assert.NoError(doc.SetCrop(&crop))

	done := newExporter(t, PNG, capture).Start(context.Background(), doc)

	// Edits made after the export started are not exported.
	red := color.NRGBA{R: 255, A: 255}
	doc.Add(markup.Object{
		Kind:  markup.Rectangle,
		Style: markup.Style{Stroke: red, Fill: red, Width: 1, Opacity: 1, Filled: true},
		Shape: markup.Box{Rect: geom.RectXYWH(0, 0, 10, 10)},
	})
	assert.NoError(doc.SetCrop(nil))

	assert.NoError(<-done)
	_, open := <-done
	assert.False(open)

	img, err := png.Decode(bytes.NewReader(data))
	assert.NoError(err)
	assert.Equal(image.Rect(0, 0, 10, 10), img.Bounds())
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal([3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestExporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	sink := SinkFunc(func([]byte, Format) error {
		called = true
		return nil
	})
	err := newExporter(t, PNG, sink).Export(ctx, markup.NewDocument(background(4, 4, color.NRGBA{A: 255})))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
