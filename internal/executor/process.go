package executor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/schmitthub/stackup/internal/logger"
)

// killWait bounds how long Kill waits for the process to be reaped after SIGKILL.
const killWait = 10 * time.Second

// Process is a background command started by RunAsync.
type Process struct {
	cmd     *exec.Cmd
	command string
	stdout  *os.File
	grace   time.Duration
	log     logger.Logger

	done    chan struct{}
	waitErr error

	killOnce   sync.Once
	killErr    error
	unregister func()
}

// RunAsync starts command in dir without waiting for it. The process runs in
// its own process group; its stdout is available through Stdout. A kill hook
// is registered with the executor's exit hooks for an orderly shutdown, and
// on Linux the group is also killed when the host dies without running them.
func (e *Executor) RunAsync(dir, command string) (*Process, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}

	cmd := exec.Command(e.shell, e.shellArgs(command)...)
	e.prepare(cmd, dir)
	cmd.Stdout = pw
	cmd.Stderr = e.stderr

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("failed to start command '%s': %w", command, err)
	}
	// The child inherited the write end; keeping ours open would hide EOF.
	pw.Close()

	p := &Process{
		cmd:     cmd,
		command: command,
		stdout:  pr,
		grace:   e.killGrace,
		log:     e.log,
		done:    make(chan struct{}),
	}
	go p.wait()

	p.unregister = e.hooks.Register(func() {
		if err := p.Kill(); err != nil {
			p.log.Warn().Err(err).Int("pid", p.PID()).Msg("exit hook failed to kill process")
		}
	})
	if e.handleSignals {
		e.hooks.HandleSignals()
	}

	e.log.Debug().Str("command", command).Str("dir", dir).Int("pid", p.PID()).Msg("started background process")
	return p, nil
}

func (p *Process) wait() {
	p.waitErr = p.cmd.Wait()
	close(p.done)
}

// PID returns the process identifier.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Command returns the command line the process was started with.
func (p *Process) Command() string {
	return p.command
}

// Stdout returns the process's standard output stream.
func (p *Process) Stdout() io.Reader {
	return p.stdout
}

// Done is closed once the process has exited and been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitErr returns the result of waiting on the process. Only meaningful after Done is closed.
func (p *Process) ExitErr() error {
	select {
	case <-p.done:
		return p.waitErr
	default:
		return nil
	}
}

// Kill terminates the process group: SIGTERM first, SIGKILL once the grace
// period elapses. Only the first call signals; later calls return the first
// call's result.
func (p *Process) Kill() error {
	p.killOnce.Do(func() {
		p.unregister()
		p.killErr = p.terminate()
		_ = p.stdout.Close()
	})
	return p.killErr
}

func (p *Process) terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	pid := p.PID()
	p.log.Debug().Int("pid", pid).Msg("terminating process group")
	if err := signalGroup(p.cmd.Process, terminateSignal); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		p.log.Debug().Err(err).Int("pid", pid).Msg("failed to send SIGTERM")
	}

	timer := time.NewTimer(p.grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
	}

	p.log.Warn().Int("pid", pid).Dur("grace", p.grace).Msg("process still running after SIGTERM, sending SIGKILL")
	if err := signalGroup(p.cmd.Process, os.Kill); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill process %d: %w", pid, err)
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(killWait):
		return fmt.Errorf("process %d did not exit after SIGKILL", pid)
	}
}
