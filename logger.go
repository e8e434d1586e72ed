package mmap

import (
	"io"
	"log/slog"
	"sync/atomic"
)

// The package logger receives the errors that have no return path: the
// release of a replaced mapping after a successful remap, and handle
// cleanup after a failed map. By default everything is discarded; callers
// who want to observe these failures install their own logger.
var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	pkgLogger.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// SetLogger installs the logger used for best-effort cleanup failures.
// Passing nil restores the discarding default. Safe to call concurrently.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	pkgLogger.Store(l)
}

func logger() *slog.Logger {
	return pkgLogger.Load()
}
