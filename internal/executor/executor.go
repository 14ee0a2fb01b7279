// Package executor runs external commands through a shell, either to
// completion with captured output or as a supervised background process.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/schmitthub/stackup/internal/logger"
	"github.com/schmitthub/stackup/internal/signals"
)

const (
	// DefaultShell runs every command as `bash -c <command>`.
	DefaultShell = "bash"

	// DefaultExtraPath is prepended to PATH so tools installed there are
	// found even when the test runner starts with a minimal environment.
	DefaultExtraPath = "/usr/local/bin/"

	// DefaultKillGrace is how long Kill waits after SIGTERM before SIGKILL.
	DefaultKillGrace = 5 * time.Second
)

// Options configures an Executor. Zero values select the defaults.
type Options struct {
	Shell     string
	ExtraPath string
	KillGrace time.Duration

	// Stderr receives standard error of background processes.
	// If nil, it is discarded.
	Stderr io.Writer

	// Hooks receives a kill hook for every background process.
	// If nil, signals.Default is used.
	Hooks *signals.ExitHooks

	// HandleSignals makes Hooks run on SIGINT/SIGTERM so background
	// processes die with the host process.
	HandleSignals bool

	Logger logger.Logger
}

// Executor runs shell commands with an augmented PATH.
type Executor struct {
	shell         string
	extraPath     string
	killGrace     time.Duration
	stderr        io.Writer
	hooks         *signals.ExitHooks
	handleSignals bool
	log           logger.Logger
}

// New creates an Executor from opts.
func New(opts Options) *Executor {
	e := &Executor{
		shell:         opts.Shell,
		extraPath:     opts.ExtraPath,
		killGrace:     opts.KillGrace,
		stderr:        opts.Stderr,
		hooks:         opts.Hooks,
		handleSignals: opts.HandleSignals,
		log:           opts.Logger,
	}
	if e.shell == "" {
		e.shell = DefaultShell
	}
	if e.killGrace <= 0 {
		e.killGrace = DefaultKillGrace
	}
	if e.hooks == nil {
		e.hooks = signals.Default
	}
	if e.log == nil {
		e.log = logger.Default()
	}
	return e
}

// Result holds the outcome of a synchronous command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandFailedError is returned when a synchronous command exits non-zero
// or cannot be started at all.
type CommandFailedError struct {
	Command  string
	Dir      string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandFailedError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("failed to run command '%s': %v", e.Command, e.Err)
	}
	return fmt.Sprintf("failed to run command '%s', return code %d.\nSTDOUT: %s\nSTDERR: %s",
		e.Command, e.ExitCode, e.Stdout, e.Stderr)
}

func (e *CommandFailedError) Unwrap() error { return e.Err }

// Env returns the child environment: the current environment with PATH
// prefixed by the extra path directory.
func (e *Executor) Env() []string {
	environ := os.Environ()
	env := make([]string, 0, len(environ)+1)
	path := ""
	for _, kv := range environ {
		key, value, _ := strings.Cut(kv, "=")
		if strings.EqualFold(key, "PATH") {
			path = value
			continue
		}
		env = append(env, kv)
	}

	switch {
	case e.extraPath == "":
	case path == "":
		path = e.extraPath
	default:
		path = e.extraPath + string(os.PathListSeparator) + path
	}
	return append(env, "PATH="+path)
}

// shellArgs runs command through the shell under a supervisor that takes
// the whole process group down with the host where the platform allows it.
func (e *Executor) shellArgs(command string) []string {
	return []string{"-c", superviseCommand(command, e.killGrace)}
}

func (e *Executor) prepare(cmd *exec.Cmd, dir string) {
	cmd.Dir = dir
	cmd.Env = e.Env()
	cmd.WaitDelay = e.killGrace
	configureProcess(cmd)
}

// RunSync runs command in dir and waits for it to finish. A non-zero exit
// code is reported as *CommandFailedError carrying the captured output.
func (e *Executor) RunSync(ctx context.Context, dir, command string) (*Result, error) {
	cmd := exec.CommandContext(ctx, e.shell, e.shellArgs(command)...)
	cmd.Cancel = func() error { return signalGroup(cmd.Process, os.Kill) }
	e.prepare(cmd, dir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.log.Debug().Str("command", command).Str("dir", dir).Msg("running command")
	start := time.Now()
	err := cmd.Run()

	res := &Result{ExitCode: -1, Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	e.log.Debug().
		Str("command", command).
		Int("exit_code", res.ExitCode).
		Dur("elapsed", time.Since(start)).
		Msg("command finished")

	if err != nil || res.ExitCode != 0 {
		return res, &CommandFailedError{
			Command:  command,
			Dir:      dir,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			Err:      err,
		}
	}
	return res, nil
}
