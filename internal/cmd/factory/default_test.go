package factory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/pkg/localstack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	f := New("1.0.0", "abc123")

	assert.Equal(t, "1.0.0", f.Version)
	assert.Equal(t, "abc123", f.Commit)
	require.NotNil(t, f.IOStreams)
	assert.NotNil(t, f.IOStreams.Logger)
	assert.NotEmpty(t, f.WorkDir)
}

func TestFactory_Config(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName),
		[]byte("install:\n  dir: /opt/localstack\n"), 0o644))

	f := New("1.0.0", "abc")
	f.WorkDir = dir

	cfg, err := f.Config()
	require.NoError(t, err)
	assert.Equal(t, "/opt/localstack", cfg.Install.Dir)

	again, err := f.Config()
	require.NoError(t, err)
	assert.Same(t, cfg, again, "config is loaded once")
}

func TestFactory_Config_explicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ci.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint:\n  host: emulator\n"), 0o644))

	f := New("1.0.0", "abc")
	f.WorkDir = t.TempDir()
	f.ConfigFile = path

	cfg, err := f.Config()
	require.NoError(t, err)
	assert.Equal(t, "emulator", cfg.Endpoint.Host)
}

func TestFactory_Config_invalid(t *testing.T) {
	t.Setenv("STACKUP_INSTALL_DIR", "relative")

	f := New("1.0.0", "abc")
	f.WorkDir = t.TempDir()

	_, err := f.Config()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install.dir")
}

func TestFactory_Stack(t *testing.T) {
	t.Setenv("STACKUP_INSTALL_DIR", filepath.Join(t.TempDir(), "ls"))

	f := New("1.0.0", "abc")
	f.WorkDir = t.TempDir()

	stack, err := f.Stack(localstack.WithSignalHandling(false), localstack.WithEndpointHost("emulator"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Teardown() })

	assert.Equal(t, localstack.StateNotStarted, stack.State())
	assert.Equal(t, "emulator", stack.Config().Endpoint.Host)
	cfg, err := f.Config()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Endpoint.Host, "stack overrides do not leak into the shared config")
}
