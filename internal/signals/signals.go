// Package signals provides OS signal utilities for graceful shutdown and
// exit-time cleanup. This is a leaf package; stdlib only, no internal
// imports, no logging.
package signals

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
)

// SetupSignalContext creates a context that's canceled on SIGINT/SIGTERM.
func SetupSignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// Default is the process-wide hook registry used by background processes
// that must not outlive the host process.
var Default = NewExitHooks()

// ExitHooks is a registry of cleanup functions that run once when the host
// process is about to terminate: either explicitly via Run (typically after
// m.Run() in TestMain) or on SIGINT/SIGTERM once HandleSignals is active.
//
// Hooks run in reverse registration order. Each hook runs at most once; a
// hook removed with its unregister func never runs.
type ExitHooks struct {
	mu    sync.Mutex
	hooks map[uint64]func()
	next  uint64

	sigOnce sync.Once
	exit    func(code int)
}

// NewExitHooks creates an empty registry that exits via os.Exit after a
// signal-triggered run.
func NewExitHooks() *ExitHooks {
	return &ExitHooks{
		hooks: make(map[uint64]func()),
		exit:  os.Exit,
	}
}

// Register adds fn to the registry. The returned func removes it again and is
// safe to call multiple times.
func (h *ExitHooks) Register(fn func()) (unregister func()) {
	h.mu.Lock()
	h.next++
	id := h.next
	h.hooks[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.hooks, id)
		h.mu.Unlock()
	}
}

// Len returns the number of hooks still pending.
func (h *ExitHooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hooks)
}

// Run invokes and removes every pending hook. Concurrent callers never run
// the same hook twice.
func (h *ExitHooks) Run() {
	h.mu.Lock()
	ids := make([]uint64, 0, len(h.hooks))
	for id := range h.hooks {
		ids = append(ids, id)
	}
	// reverse registration order
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	pending := make([]func(), 0, len(ids))
	for _, id := range ids {
		pending = append(pending, h.hooks[id])
		delete(h.hooks, id)
	}
	h.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// HandleSignals installs a SIGINT/SIGTERM handler that runs all hooks and
// then exits with 128+signal. Only the first call has an effect.
func (h *ExitHooks) HandleSignals() {
	h.sigOnce.Do(func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			sig := <-sigChan
			signal.Stop(sigChan)
			h.Run()
			h.exit(exitCode(sig))
		}()
	})
}

func exitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
