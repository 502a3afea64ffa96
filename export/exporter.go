package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/esimov/markup"
	"github.com/esimov/markup/render"
)

// Exporter renders a document at full resolution, encodes it and hands the
// bytes to every sink.
type Exporter struct {
	comp   *render.Compositor
	format Format
	sinks  []Sink
}

// NewExporter returns an exporter encoding to format.
func NewExporter(comp *render.Compositor, format Format, sinks ...Sink) *Exporter {
	return &Exporter{comp: comp, format: format, sinks: sinks}
}

// Export renders doc and delivers it. Every sink is tried, the returned
// error joins the failures.
func (e *Exporter) Export(ctx context.Context, doc *markup.Document) error {
	img, err := e.comp.RenderForExportContext(ctx, doc)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, e.format); err != nil {
		return fmt.Errorf("unable to encode the image: %w", err)
	}

	var errs []error
	for _, s := range e.sinks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Deliver(buf.Bytes(), e.format); err != nil {
			errs = append(errs, err)
		}
	}
	err = errors.Join(errs...)
	if err != nil {
		markup.Logger().Warn("export: delivery failed", "error", err)
	} else {
		markup.Logger().Info("export: delivered", "format", e.format, "bytes", buf.Len(), "sinks", len(e.sinks))
	}
	return err
}

// Start exports a snapshot of doc taken before it returns, so later edits
// do not affect the exported image. The result is sent on the returned
// channel, which is then closed.
func (e *Exporter) Start(ctx context.Context, doc *markup.Document) <-chan error {
	snap := doc.Clone()
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- e.Export(ctx, snap)
	}()
	return done
}
