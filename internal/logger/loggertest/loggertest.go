// Package loggertest provides test doubles for the logger package.
// TestLogger captures log output for assertions in tests.
// *TestLogger satisfies logger.Logger via explicit method implementations.
package loggertest

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a test double that satisfies logger.Logger.
// It delegates to a private zerolog.Logger without embedding it,
// exposing only the 4 interface methods, not zerolog's full API surface.
type TestLogger struct {
	logger zerolog.Logger
	buf    *syncBuffer
}

// syncBuffer guards the capture buffer; components log from goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// New creates a test logger that captures all output to a buffer.
func New() *TestLogger {
	buf := &syncBuffer{}
	return &TestLogger{
		logger: zerolog.New(buf),
		buf:    buf,
	}
}

// NewNop creates a test logger that discards all output.
func NewNop() *TestLogger {
	return &TestLogger{
		logger: zerolog.Nop(),
		buf:    &syncBuffer{},
	}
}

// Debug returns a debug-level zerolog.Event.
func (tl *TestLogger) Debug() *zerolog.Event { return tl.logger.Debug() }

// Info returns an info-level zerolog.Event.
func (tl *TestLogger) Info() *zerolog.Event { return tl.logger.Info() }

// Warn returns a warn-level zerolog.Event.
func (tl *TestLogger) Warn() *zerolog.Event { return tl.logger.Warn() }

// Error returns an error-level zerolog.Event.
func (tl *TestLogger) Error() *zerolog.Event { return tl.logger.Error() }

// Output returns captured log output as a string.
func (tl *TestLogger) Output() string { return tl.buf.String() }

// Reset clears captured output.
func (tl *TestLogger) Reset() { tl.buf.Reset() }
