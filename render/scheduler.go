package render

import (
	"context"
	"image"
	"sync"

	"github.com/esimov/markup"
	"github.com/esimov/markup/geom"
)

// Frame is a render request. Doc must not be modified while the frame is
// rendered, hosts pass a snapshot.
type Frame struct {
	Doc      *markup.Document
	View     geom.Transform
	Viewport image.Point
	Preview  markup.Preview
}

// Scheduler renders frames in the background with last write wins
// semantics: a new request cancels the render in flight, and a finished
// render is only delivered if no newer request arrived meanwhile.
type Scheduler struct {
	comp *Compositor
	out  chan *image.RGBA

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewScheduler returns a scheduler rendering with comp.
func NewScheduler(comp *Compositor) *Scheduler {
	return &Scheduler{comp: comp, out: make(chan *image.RGBA, 1)}
}

// Frames delivers the rendered surfaces. Only the latest surface is kept
// if the consumer falls behind.
func (s *Scheduler) Frames() <-chan *image.RGBA {
	return s.out
}

// Request starts rendering f, superseding any previous request.
func (s *Scheduler) Request(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		img, err := s.comp.RenderContext(ctx, f.Doc, f.View, f.Viewport, f.Preview)
		if err != nil {
			markup.Logger().Debug("render: frame cancelled", "generation", gen)
			return
		}
		s.deliver(gen, img)
	}()
}

func (s *Scheduler) deliver(gen uint64, img *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.closed {
		markup.Logger().Debug("render: stale frame discarded", "generation", gen, "latest", s.gen)
		return
	}
	select {
	case <-s.out:
	default:
	}
	s.out <- img
}

// Close cancels the render in flight, waits for it and closes the frames
// channel.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	close(s.out)
}
