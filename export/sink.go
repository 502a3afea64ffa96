package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/esimov/markup/utils"
)

// pipeName is the destination name that indicates stdout is being used.
const pipeName = "-"

// Sink receives the encoded image.
type Sink interface {
	Deliver(data []byte, f Format) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(data []byte, f Format) error

func (fn SinkFunc) Deliver(data []byte, f Format) error { return fn(data, f) }

// FileSink writes the image to a file, creating the missing directories.
// A leading "~/" in Path stands for the home directory.
type FileSink struct {
	Path string
}

func (s FileSink) Deliver(data []byte, _ Format) error {
	path, err := utils.ExpandPath(s.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write the destination file: %w", err)
	}
	return nil
}

// WriterSink writes the image to W, usually the standard output.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Deliver(data []byte, _ Format) error {
	_, err := s.W.Write(data)
	return err
}

// CommandSink pipes the image into a shell command, like a clipboard tool.
type CommandSink struct {
	Command string
}

func (s CommandSink) Deliver(data []byte, _ Format) error {
	var stderr bytes.Buffer
	cmd := exec.Command("sh", "-c", s.Command)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("command %q failed: %w: %s", s.Command, err, msg)
		}
		return fmt.Errorf("command %q failed: %w", s.Command, err)
	}
	return nil
}

// NewSink returns the sink writing to dest: stdout for "-", a file otherwise.
func NewSink(dest string, stdout io.Writer) Sink {
	if dest == pipeName {
		return WriterSink{W: stdout}
	}
	return FileSink{Path: dest}
}
