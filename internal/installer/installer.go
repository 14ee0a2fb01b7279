// Package installer makes sure the emulator sources are cloned and built in
// the install directory exactly once per machine.
//
// Existence of the install directory is the completeness signal. A failed
// clone or build removes the directory so the next run starts over. The
// check-clone-build sequence runs under an advisory lock on "<dir>.lock" so
// concurrent test binaries never clone into the same directory.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/schmitthub/stackup/internal/git"
	"github.com/schmitthub/stackup/internal/logger"
)

// Step identifies the installation phase that failed.
type Step string

const (
	StepPrepare Step = "prepare"
	StepLock    Step = "lock"
	StepClone   Step = "clone"
	StepBuild   Step = "build"
)

// InstallationFailedError reports a failed clone or build.
type InstallationFailedError struct {
	Dir   string
	Step  Step
	Cause error
}

func (e *InstallationFailedError) Error() string {
	return fmt.Sprintf("installing emulator into %s failed during %s: %v", e.Dir, e.Step, e.Cause)
}

func (e *InstallationFailedError) Unwrap() error { return e.Cause }

// Options configures an Installer.
type Options struct {
	Dir          string
	RepoURL      string
	Ref          string
	Depth        int
	BuildCommand string
	// LockTimeout bounds the wait for another process's install. 0 waits
	// until ctx is done.
	LockTimeout time.Duration

	Cloner git.Cloner
	Runner git.CommandRunner
	Logger logger.Logger
}

// Installer clones and builds the emulator.
type Installer struct {
	opts Options
	log  logger.Logger
	mu   sync.Mutex
}

// New creates an Installer. Cloner defaults to a GoGitCloner.
func New(opts Options) *Installer {
	if opts.Cloner == nil {
		opts.Cloner = &git.GoGitCloner{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Installer{opts: opts, log: log}
}

// Dir returns the install directory.
func (i *Installer) Dir() string {
	return i.opts.Dir
}

// Installed reports whether the install directory exists.
func (i *Installer) Installed() bool {
	info, err := os.Stat(i.opts.Dir)
	return err == nil && info.IsDir()
}

// EnsureInstalled clones and builds the emulator unless the install
// directory already exists. It never retries a failed step.
func (i *Installer) EnsureInstalled(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.Installed() {
		i.log.Debug().Str("dir", i.opts.Dir).Msg("emulator already installed")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(i.opts.Dir), 0o755); err != nil {
		return &InstallationFailedError{Dir: i.opts.Dir, Step: StepPrepare, Cause: err}
	}

	return i.withInstallLock(ctx, func() error {
		// another process may have finished while we waited for the lock
		if i.Installed() {
			i.log.Debug().Str("dir", i.opts.Dir).Msg("emulator installed by another process")
			return nil
		}
		return i.install(ctx)
	})
}

func (i *Installer) install(ctx context.Context) error {
	start := time.Now()
	i.log.Info().
		Str("dir", i.opts.Dir).
		Str("repo", i.opts.RepoURL).
		Str("ref", i.opts.Ref).
		Msg("installing emulator")

	err := i.opts.Cloner.Clone(ctx, git.CloneRequest{
		URL:   i.opts.RepoURL,
		Dir:   i.opts.Dir,
		Ref:   i.opts.Ref,
		Depth: i.opts.Depth,
	})
	if err != nil {
		return i.fail(StepClone, err)
	}

	if i.opts.BuildCommand != "" {
		if i.opts.Runner == nil {
			return i.fail(StepBuild, errors.New("no command runner configured"))
		}
		i.log.Info().Str("command", i.opts.BuildCommand).Msg("building emulator")
		if _, err := i.opts.Runner.RunSync(ctx, i.opts.Dir, i.opts.BuildCommand); err != nil {
			return i.fail(StepBuild, err)
		}
	}

	i.log.Info().
		Str("dir", i.opts.Dir).
		Dur("elapsed", time.Since(start)).
		Msg("emulator installed")
	return nil
}

// fail removes the partial install so it is not mistaken for a complete one.
func (i *Installer) fail(step Step, cause error) error {
	i.log.Error().Err(cause).Str("dir", i.opts.Dir).Str("step", string(step)).Msg("emulator installation failed")
	if err := os.RemoveAll(i.opts.Dir); err != nil {
		i.log.Warn().Err(err).Str("dir", i.opts.Dir).Msg("failed to remove partial install")
	}
	return &InstallationFailedError{Dir: i.opts.Dir, Step: step, Cause: cause}
}

// LockPath returns the advisory lock file guarding the install directory.
func (i *Installer) LockPath() string {
	return filepath.Clean(i.opts.Dir) + ".lock"
}

func (i *Installer) withInstallLock(ctx context.Context, fn func() error) error {
	fl := flock.New(i.LockPath())

	lockCtx := ctx
	if i.opts.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, i.opts.LockTimeout)
		defer cancel()
	}

	locked, err := fl.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return &InstallationFailedError{Dir: i.opts.Dir, Step: StepLock, Cause: fmt.Errorf("acquiring install lock %s: %w", i.LockPath(), err)}
	}
	if !locked {
		return &InstallationFailedError{Dir: i.opts.Dir, Step: StepLock, Cause: fmt.Errorf("timed out acquiring install lock %s", i.LockPath())}
	}
	defer func() { _ = fl.Unlock() }()

	return fn()
}
