// Package lifecycletest provides fakes for the lifecycle package.
package lifecycletest

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/schmitthub/stackup/internal/lifecycle"
)

// Compile-time assertions.
var (
	_ lifecycle.Process   = (*FakeProcess)(nil)
	_ lifecycle.Installer = (*MockInstaller)(nil)
	_ lifecycle.Starter   = (*MockStarter)(nil)
)

// FakeProcess is an in-memory emulator process. Lines passed to Emit appear
// on Stdout; Exit or Kill closes the stream.
type FakeProcess struct {
	pid int
	r   *io.PipeReader
	w   *io.PipeWriter

	done     chan struct{}
	exitOnce sync.Once
	kills    atomic.Int32

	// KillErr is returned from Kill.
	KillErr error
}

// NewFakeProcess creates a running FakeProcess.
func NewFakeProcess(pid int) *FakeProcess {
	r, w := io.Pipe()
	return &FakeProcess{pid: pid, r: r, w: w, done: make(chan struct{})}
}

func (p *FakeProcess) PID() int              { return p.pid }
func (p *FakeProcess) Stdout() io.Reader     { return p.r }
func (p *FakeProcess) Done() <-chan struct{} { return p.done }

// Emit writes each line to stdout. It blocks until the lines are read and
// fails once the process has exited.
func (p *FakeProcess) Emit(lines ...string) error {
	for _, line := range lines {
		if _, err := io.WriteString(p.w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Exit simulates the process terminating on its own.
func (p *FakeProcess) Exit() {
	p.exitOnce.Do(func() {
		_ = p.w.Close()
		close(p.done)
	})
}

// Kill records the call and exits the process.
func (p *FakeProcess) Kill() error {
	p.kills.Add(1)
	p.Exit()
	return p.KillErr
}

// KillCount returns how many times Kill was called.
func (p *FakeProcess) KillCount() int {
	return int(p.kills.Load())
}

// Exited reports whether the process has terminated.
func (p *FakeProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// MockInstaller is a test mock for lifecycle.Installer.
// If EnsureInstalledFn is nil, EnsureInstalled succeeds.
type MockInstaller struct {
	InstallDir        string
	EnsureInstalledFn func(ctx context.Context) error

	calls atomic.Int32
}

// EnsureInstalled implements lifecycle.Installer.
func (m *MockInstaller) EnsureInstalled(ctx context.Context) error {
	m.calls.Add(1)
	if m.EnsureInstalledFn != nil {
		return m.EnsureInstalledFn(ctx)
	}
	return nil
}

// Dir implements lifecycle.Installer.
func (m *MockInstaller) Dir() string { return m.InstallDir }

// CallCount returns the number of EnsureInstalled calls.
func (m *MockInstaller) CallCount() int { return int(m.calls.Load()) }

// MockStarter is a test mock for lifecycle.Starter.
type MockStarter struct {
	mu sync.Mutex

	StartFn func(dir, command string) (lifecycle.Process, error)

	// Call tracking
	Calls []Call
}

// Call records a single Start invocation.
type Call struct {
	Dir     string
	Command string
}

// Start implements lifecycle.Starter.
func (m *MockStarter) Start(dir, command string) (lifecycle.Process, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{Dir: dir, Command: command})
	m.mu.Unlock()

	if m.StartFn != nil {
		return m.StartFn(dir, command)
	}
	return NewFakeProcess(1), nil
}

// CallCount returns the number of Start calls.
func (m *MockStarter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// StartsWith returns a MockStarter that hands out proc and emits lines on
// it in the background once started.
func StartsWith(proc *FakeProcess, lines ...string) *MockStarter {
	return &MockStarter{
		StartFn: func(string, string) (lifecycle.Process, error) {
			go func() { _ = proc.Emit(lines...) }()
			return proc, nil
		},
	}
}
