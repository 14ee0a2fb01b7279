package lifecycle_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/stackup/internal/executor"
	"github.com/schmitthub/stackup/internal/lifecycle"
	"github.com/schmitthub/stackup/internal/lifecycle/lifecycletest"
	"github.com/schmitthub/stackup/internal/logger/loggertest"
	"github.com/schmitthub/stackup/internal/signals"
)

const fakeInfra = `#!/usr/bin/env bash
echo "Starting local dev environment. CTRL-C to quit."
echo "Starting mock S3 (http port 4572)..."
sleep 0.2
echo "Ready."
while true; do
	echo "heartbeat"
	sleep 0.1
done
`

func TestController_FakeEmulatorProcess(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "infra.sh"), []byte(fakeInfra), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "localstack"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "localstack", "constants.py"), []byte(constantsPy), 0o644))

	hooks := signals.NewExitHooks()
	exe := executor.New(executor.Options{
		Hooks:     hooks,
		KillGrace: time.Second,
		Logger:    loggertest.NewNop(),
	})
	output := &syncBuffer{}

	c := lifecycle.New(lifecycle.Options{
		Installer:      &lifecycletest.MockInstaller{InstallDir: dir},
		Starter:        lifecycle.ExecStarter(exe),
		StartCommand:   "exec bash infra.sh",
		ReadyMarker:    "Ready.",
		ConfigFile:     "localstack/constants.py",
		StartupTimeout: 10 * time.Second,
		KillOnFailure:  true,
		Output:         output,
		Logger:         loggertest.NewNop(),
	})
	t.Cleanup(func() { _ = c.Teardown() })

	url, err := c.Endpoint(context.Background(), "s3")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4572/", url)
	assert.Equal(t, 1, hooks.Len(), "exit hook registered for the emulator")

	snap := c.Snapshot()
	require.NotNil(t, snap)
	proc, err := os.FindProcess(snap.PID)
	require.NoError(t, err)
	require.NotNil(t, proc)

	// output keeps flowing after readiness
	assert.Eventually(t, func() bool {
		return len(output.String()) > len("Ready.\n")*10
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, c.Teardown())
	assert.Zero(t, hooks.Len(), "exit hook removed after teardown")
	assert.Equal(t, lifecycle.StateTornDown, c.State())
}

func TestController_ExitHookKillsEmulator(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "infra.sh"), []byte(fakeInfra), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "localstack"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "localstack", "constants.py"), []byte(constantsPy), 0o644))

	hooks := signals.NewExitHooks()
	exe := executor.New(executor.Options{Hooks: hooks, KillGrace: time.Second, Logger: loggertest.NewNop()})

	var started *executor.Process
	starter := lifecycle.StarterFunc(func(dir, command string) (lifecycle.Process, error) {
		p, err := exe.RunAsync(dir, command)
		started = p
		return p, err
	})

	c := lifecycle.New(lifecycle.Options{
		Installer:      &lifecycletest.MockInstaller{InstallDir: dir},
		Starter:        starter,
		StartCommand:   "exec bash infra.sh",
		ReadyMarker:    "Ready.",
		ConfigFile:     "localstack/constants.py",
		StartupTimeout: 10 * time.Second,
		Logger:         loggertest.NewNop(),
	})
	require.NoError(t, c.EnsureRunning(context.Background()))
	require.NotNil(t, started)

	// host shutting down without an explicit teardown
	hooks.Run()

	select {
	case <-started.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("exit hook did not kill the emulator")
	}

	// teardown afterwards is still safe
	require.NoError(t, c.Teardown())
}
