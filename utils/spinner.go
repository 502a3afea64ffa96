package utils

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Spinner is a terminal progress indicator.
type Spinner struct {
	mu         sync.Mutex
	delay      time.Duration
	writer     io.Writer
	message    string
	lastOutput string
	StopMsg    string
	hideCursor bool

	stop chan struct{}
	done chan struct{}
}

// NewSpinner instantiates a new progress indicator writing to w.
func NewSpinner(w io.Writer, msg string, d time.Duration, hideCursor bool) *Spinner {
	return &Spinner{
		delay:      d,
		writer:     w,
		message:    msg,
		hideCursor: hideCursor,
	}
}

// Start starts the progress indicator. Calling Start on a running spinner
// has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	if s.hideCursor && runtime.GOOS != "windows" {
		// hides the cursor
		fmt.Fprint(s.writer, "\033[?25l")
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()
		for {
			for _, r := range `⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏` {
				s.mu.Lock()
				output := fmt.Sprintf("\r%s%s %c%s", s.message, SuccessColor, r, DefaultColor)
				fmt.Fprint(s.writer, output)
				s.lastOutput = output
				s.mu.Unlock()

				select {
				case <-stop:
					return
				case <-ticker.C:
				}
			}
		}
	}(s.stop, s.done)
}

// Stop stops the progress indicator and waits until the last frame is cleared.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.restoreCursor()
	if len(s.StopMsg) > 0 {
		fmt.Fprint(s.writer, s.StopMsg)
	}
}

// restoreCursor restores back the cursor visibility.
func (s *Spinner) restoreCursor() {
	if s.hideCursor && runtime.GOOS != "windows" {
		// makes the cursor visible
		fmt.Fprint(s.writer, "\033[?25h")
	}
}

// clear deletes the last line. Caller must hold the the locker.
func (s *Spinner) clear() {
	n := utf8.RuneCountInString(s.lastOutput)
	if runtime.GOOS == "windows" {
		clearString := "\r" + strings.Repeat(" ", n) + "\r"
		fmt.Fprint(s.writer, clearString)
		s.lastOutput = ""
		return
	}
	fmt.Fprint(s.writer, "\r\033[K") // clear line
	s.lastOutput = ""
}
