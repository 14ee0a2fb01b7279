// Package lifecycle owns the emulator process for the life of a test run.
//
// A Controller installs the emulator on first use, starts it, waits for the
// ready marker on its stdout, parses the port assignments from the
// configuration artifact and publishes them as an immutable Snapshot.
// Startup happens at most once per Controller: a failure is sticky and
// returned to every later caller.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/schmitthub/stackup/internal/endpoint"
	"github.com/schmitthub/stackup/internal/executor"
	"github.com/schmitthub/stackup/internal/logger"
)

// Installer makes the emulator available in Dir.
type Installer interface {
	EnsureInstalled(ctx context.Context) error
	Dir() string
}

// Process is a running emulator.
type Process interface {
	PID() int
	Stdout() io.Reader
	Done() <-chan struct{}
	Kill() error
}

// Starter launches the emulator command in dir without waiting for it.
type Starter interface {
	Start(dir, command string) (Process, error)
}

// StarterFunc adapts a function to Starter.
type StarterFunc func(dir, command string) (Process, error)

func (f StarterFunc) Start(dir, command string) (Process, error) { return f(dir, command) }

// ExecStarter starts the emulator through e.RunAsync.
func ExecStarter(e *executor.Executor) Starter {
	return StarterFunc(func(dir, command string) (Process, error) {
		p, err := e.RunAsync(dir, command)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// Snapshot is the published view of a ready emulator. It is never mutated
// after publication.
type Snapshot struct {
	RunID      string
	PID        int
	InstallDir string
	ConfigPath string
	Table      *endpoint.Table
	ReadyAt    time.Time
	Startup    time.Duration
}

// Options configures a Controller.
type Options struct {
	Installer Installer
	Starter   Starter

	StartCommand string
	ReadyMarker  string
	// ConfigFile is the port-assignment artifact, relative to the install dir.
	ConfigFile string

	// StartupTimeout bounds the wait for ReadyMarker. 0 waits until ctx is done.
	StartupTimeout time.Duration
	// ArtifactGrace is how long to wait for ConfigFile to appear after ready.
	ArtifactGrace time.Duration
	// KillOnFailure kills the process when startup fails after it was spawned.
	// When false the process is left for inspection until Teardown.
	KillOnFailure bool

	// ProbeServices are dialed after ready; each must accept a TCP
	// connection within ProbeTimeout.
	ProbeServices []string
	ProbeTimeout  time.Duration

	Resolver endpoint.Resolver
	// Output receives every line the emulator prints. Defaults to io.Discard.
	Output io.Writer
	Logger logger.Logger
}

// Controller is the lifecycle state machine for one emulator.
type Controller struct {
	opts Options
	log  logger.Logger

	// startMu serializes EnsureRunning.
	startMu sync.Mutex

	state    atomic.Int32
	snapshot atomic.Pointer[Snapshot]

	// mu guards the fields below, which Teardown reads without startMu.
	mu       sync.Mutex
	proc     Process
	tornDown bool
	failure  error
}

// New creates a Controller in StateNotStarted.
func New(opts Options) *Controller {
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Resolver.Scheme == "" && opts.Resolver.Host == "" {
		opts.Resolver = endpoint.DefaultResolver
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Controller{opts: opts, log: log}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Snapshot returns the published snapshot, or nil before Ready.
func (c *Controller) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Err returns the sticky startup failure, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// Exited returns a channel closed when the emulator process exits, or nil
// when no process has been started.
func (c *Controller) Exited() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return nil
	}
	return c.proc.Done()
}

func (c *Controller) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	c.log.Debug().Stringer("from", prev).Stringer("to", s).Msg("lifecycle transition")
}

// EnsureRunning brings the emulator to Ready. Concurrent callers block
// until the first one finishes and then observe its outcome.
func (c *Controller) EnsureRunning(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	switch c.State() {
	case StateReady:
		return nil
	case StateFailed:
		return c.Err()
	case StateTornDown:
		return ErrTornDown
	}

	runID := uuid.NewString()
	logger.SetRun(runID)
	start := time.Now()

	if !c.advance(StateInstalling) {
		return ErrTornDown
	}
	if err := c.opts.Installer.EnsureInstalled(ctx); err != nil {
		return c.fail(err)
	}
	dir := c.opts.Installer.Dir()

	if !c.advance(StateStarting) {
		return ErrTornDown
	}
	c.log.Info().Str("dir", dir).Str("command", c.opts.StartCommand).Msg("starting emulator")
	proc, err := c.opts.Starter.Start(dir, c.opts.StartCommand)
	if err != nil {
		return c.fail(&StartupFailedError{Reason: "failed to start emulator", Cause: err})
	}
	if !c.track(proc) {
		_ = proc.Kill()
		return ErrTornDown
	}

	watch := watchOutput(proc.Stdout(), c.opts.ReadyMarker, c.opts.Output, c.log)
	if err := c.awaitReady(ctx, watch); err != nil {
		return c.fail(err)
	}

	configPath := filepath.Join(dir, c.opts.ConfigFile)
	data, err := waitForFile(ctx, configPath, c.opts.ArtifactGrace)
	if err != nil {
		return c.fail(&StartupFailedError{Reason: "failed to read configuration file " + configPath, Cause: err})
	}
	table := endpoint.Parse(string(data))
	if table.Len() == 0 {
		c.log.Warn().Str("path", configPath).Msg("configuration file has no port assignments")
	}

	if err := c.probeServices(ctx, table); err != nil {
		return c.fail(&StartupFailedError{Reason: "service not reachable", Cause: err})
	}

	snap := &Snapshot{
		RunID:      runID,
		PID:        proc.PID(),
		InstallDir: dir,
		ConfigPath: configPath,
		Table:      table,
		ReadyAt:    time.Now(),
		Startup:    time.Since(start),
	}
	if !c.publish(snap) {
		return ErrTornDown
	}

	c.log.Info().
		Int("pid", snap.PID).
		Int("services", table.Len()).
		Dur("elapsed", snap.Startup).
		Msg("emulator ready")
	return nil
}

func (c *Controller) awaitReady(ctx context.Context, watch *outputWatch) error {
	var timeout <-chan time.Time
	if c.opts.StartupTimeout > 0 {
		timer := time.NewTimer(c.opts.StartupTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-watch.ready:
		return nil
	case <-watch.ended:
		// the marker may be the last line before exit
		if watch.isReady() {
			return nil
		}
		return &StartupFailedError{Reason: "process exited before signaling readiness"}
	case <-timeout:
		return &StartupTimeoutError{Timeout: c.opts.StartupTimeout, Marker: c.opts.ReadyMarker}
	case <-ctx.Done():
		return &StartupFailedError{Reason: "startup canceled", Cause: ctx.Err()}
	}
}

// advance moves to s unless Teardown already ran.
func (c *Controller) advance(s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return false
	}
	c.setState(s)
	return true
}

// track records a spawned process so Teardown can reach it and moves to
// StateWaitingReady. It reports false when Teardown already ran.
func (c *Controller) track(proc Process) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return false
	}
	c.proc = proc
	c.setState(StateWaitingReady)
	return true
}

func (c *Controller) publish(snap *Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return false
	}
	c.snapshot.Store(snap)
	c.setState(StateReady)
	return true
}

// fail records err as the sticky outcome of this controller. A teardown
// that raced the startup wins and ErrTornDown is returned instead.
func (c *Controller) fail(err error) error {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return ErrTornDown
	}
	c.failure = err
	proc := c.proc
	c.setState(StateFailed)
	c.mu.Unlock()

	c.log.Error().Err(err).Msg("emulator startup failed")

	if proc != nil && c.opts.KillOnFailure {
		if kerr := proc.Kill(); kerr != nil {
			c.log.Warn().Err(kerr).Int("pid", proc.PID()).Msg("failed to kill emulator after startup failure")
		}
	} else if proc != nil {
		c.log.Warn().Int("pid", proc.PID()).Msg("leaving failed emulator running until teardown")
	}
	return err
}

// Teardown kills the emulator if one was spawned. It is safe to call
// repeatedly and concurrently with EnsureRunning; it never waits for a
// startup in progress. Teardown before anything was started is a no-op.
func (c *Controller) Teardown() error {
	c.mu.Lock()
	if c.tornDown || (c.proc == nil && c.State() == StateNotStarted) {
		c.mu.Unlock()
		return nil
	}
	c.tornDown = true
	proc := c.proc
	c.snapshot.Store(nil)
	c.setState(StateTornDown)
	c.mu.Unlock()

	defer logger.ClearRun()

	if proc == nil {
		c.log.Debug().Msg("teardown: no emulator process")
		return nil
	}

	c.log.Info().Int("pid", proc.PID()).Msg("stopping emulator")
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("stopping emulator (pid %d): %w", proc.PID(), err)
	}
	return nil
}

// Endpoint ensures the emulator is running and returns the base URL of service.
func (c *Controller) Endpoint(ctx context.Context, service string) (string, error) {
	if err := c.EnsureRunning(ctx); err != nil {
		return "", err
	}
	snap := c.Snapshot()
	if snap == nil {
		if c.State() == StateTornDown {
			return "", ErrTornDown
		}
		return "", ErrNotReady
	}
	return c.opts.Resolver.Resolve(snap.Table, service)
}

// Endpoints returns the base URL of every service in the published snapshot.
func (c *Controller) Endpoints() (map[string]string, error) {
	snap := c.Snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}
	urls := make(map[string]string, snap.Table.Len())
	for _, svc := range snap.Table.Services() {
		url, err := c.opts.Resolver.Resolve(snap.Table, svc)
		if err != nil && !errors.Is(err, endpoint.ErrEndpointNotFound) {
			return nil, err
		}
		urls[svc] = url
	}
	return urls, nil
}
