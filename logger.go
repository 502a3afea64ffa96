package markup

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger used by the markup packages.
// Passing nil restores the silent default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	logger.Store(l)
}

// Logger returns the current package logger.
func Logger() *slog.Logger {
	return logger.Load()
}
