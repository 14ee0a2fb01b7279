package lifecycle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/schmitthub/stackup/internal/logger"
)

// maxLineSize bounds a line considered for the marker. Longer lines are
// still copied to the sink but never match.
const maxLineSize = 64 * 1024

// outputWatch follows the emulator's stdout line by line. Output is copied
// to the sink unchanged; ready is closed on the first line equal to the
// marker (ignoring the line ending) and ended is closed when the stream is
// exhausted.
type outputWatch struct {
	ready chan struct{}
	ended chan struct{}
}

func watchOutput(r io.Reader, marker string, sink io.Writer, log logger.Logger) *outputWatch {
	w := &outputWatch{
		ready: make(chan struct{}),
		ended: make(chan struct{}),
	}
	go w.run(r, marker, sink, log)
	return w
}

func (w *outputWatch) run(r io.Reader, marker string, sink io.Writer, log logger.Logger) {
	defer close(w.ended)

	br := bufio.NewReaderSize(r, maxLineSize)
	signaled, oversized := false, false
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			_, _ = sink.Write(chunk)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			if !oversized {
				log.Debug().Int("limit", maxLineSize).Msg("emulator output line too long to match the ready marker")
			}
			oversized = true
			continue
		}

		if !signaled && !oversized && len(chunk) > 0 && strings.TrimRight(string(chunk), "\r\n") == marker {
			signaled = true
			close(w.ready)
		}
		oversized = false

		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug().Err(err).Msg("emulator output closed")
			}
			return
		}
	}
}

// isReady reports whether the marker has been seen.
func (w *outputWatch) isReady() bool {
	select {
	case <-w.ready:
		return true
	default:
		return false
	}
}

// waitForFile returns the contents of path, waiting up to grace for it to
// appear. The parent directory is watched so a late write is picked up
// without polling.
func waitForFile(ctx context.Context, path string, grace time.Duration) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil || !errors.Is(err, os.ErrNotExist) || grace <= 0 {
		return data, err
	}

	watcher, werr := fsnotify.NewWatcher()
	if werr != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", werr)
	}
	defer watcher.Close()

	if werr := watcher.Add(filepath.Dir(path)); werr != nil {
		// nothing to watch; the file cannot appear without its directory
		return nil, err
	}

	// the file may have been written between the first read and Add
	if data, err = os.ReadFile(path); err == nil || !errors.Is(err, os.ErrNotExist) {
		return data, err
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return os.ReadFile(path)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil, err
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Create|fsnotify.Write) {
				continue
			}
			// a Create may arrive before the content is written
			if data, rerr := os.ReadFile(path); rerr == nil && len(data) > 0 {
				return data, nil
			}
		case werr, ok := <-watcher.Errors:
			if ok {
				return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), werr)
			}
		}
	}
}
