//go:build linux

package executor

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/schmitthub/stackup/internal/logger/loggertest"
	"github.com/schmitthub/stackup/internal/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostDirEnv makes TestHostExitsWithoutTeardown act as the host process.
const hostDirEnv = "STACKUP_EXECUTOR_HOST_DIR"

// TestHostExitsWithoutTeardown starts a process tree and exits without
// killing it. It only does something when run by
// TestRunAsync_ProcessTreeDiesWithHost.
func TestHostExitsWithoutTeardown(t *testing.T) {
	dir := os.Getenv(hostDirEnv)
	if dir == "" {
		t.Skip("run as the host of TestRunAsync_ProcessTreeDiesWithHost")
	}

	e := New(Options{Hooks: signals.NewExitHooks(), KillGrace: time.Second, Logger: loggertest.NewNop()})
	if _, err := e.RunAsync(dir, "sleep 300 & echo $! > grandchild.pid; wait"); err != nil {
		os.Exit(2)
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(filepath.Join(dir, "grandchild.pid"))
		if err == nil && bytes.HasSuffix(data, []byte("\n")) {
			os.Exit(3)
		}
		time.Sleep(20 * time.Millisecond)
	}
	os.Exit(4)
}

func processAlive(pid int) bool {
	if err := syscall.Kill(pid, 0); err != nil {
		return false
	}
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}
	// state follows the parenthesized command name; Z is an unreaped zombie
	if i := bytes.LastIndexByte(stat, ')'); i >= 0 && i+2 < len(stat) {
		return stat[i+2] != 'Z'
	}
	return true
}

func TestRunAsync_ProcessTreeDiesWithHost(t *testing.T) {
	requireBash(t)
	if os.Getenv(hostDirEnv) != "" {
		t.Skip("already running as the host")
	}

	dir := t.TempDir()
	host := exec.Command(os.Args[0], "-test.run=^TestHostExitsWithoutTeardown$")
	host.Env = append(os.Environ(), hostDirEnv+"="+dir)

	err := host.Run()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "host should exit with a code, got %v", err)
	require.Equal(t, 3, exitErr.ExitCode(), "host failed before the grandchild started")

	data, err := os.ReadFile(filepath.Join(dir, "grandchild.pid"))
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	t.Cleanup(func() {
		if processAlive(pid) {
			_ = syscall.Kill(pid, syscall.SIGKILL)
		}
	})

	assert.Eventually(t, func() bool { return !processAlive(pid) },
		10*time.Second, 50*time.Millisecond, "grandchild %d outlived the host", pid)
}

func TestSuperviseCommand_PreservesExitStatus(t *testing.T) {
	e, _ := newTestExecutor(t, Options{})

	p, err := e.RunAsync("", "echo done; exit 4")
	require.NoError(t, err)
	<-p.Done()

	var exitErr *exec.ExitError
	require.True(t, errors.As(p.ExitErr(), &exitErr))
	assert.Equal(t, 4, exitErr.ExitCode())
}

func TestSuperviseCommand_GraceRoundsUp(t *testing.T) {
	assert.Contains(t, superviseCommand("true", 0), "sleep 1;")
	assert.Contains(t, superviseCommand("true", 1500*time.Millisecond), "sleep 2;")
	assert.Contains(t, superviseCommand("exec make infra", time.Second), "\nexec make infra\n")
}
