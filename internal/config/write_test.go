package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := DefaultConfig()
	cfg.Install.Dir = "/opt/localstack"
	cfg.Startup.Timeout = 2 * time.Minute
	cfg.Startup.ProbeServices = []string{"s3"}

	require.NoError(t, Write(path, cfg, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "STACKUP_<SECTION>_<KEY>")
	assert.Contains(t, string(data), "ready_marker: Ready.")
	assert.Contains(t, string(data), "timeout: 2m0s")

	loaded, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/localstack", loaded.Install.Dir)
	assert.Equal(t, 2*time.Minute, loaded.Startup.Timeout)
	assert.Equal(t, []string{"s3"}, loaded.Startup.ProbeServices)
	assert.Equal(t, cfg.Startup.KillGrace, loaded.Startup.KillGrace)
	assert.Equal(t, cfg.Install.LockTimeout, loaded.Install.LockTimeout)
}

func TestWrite_Safe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	require.NoError(t, Write(path, nil, true))

	err := Write(path, nil, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigExists))

	cfg := DefaultConfig()
	cfg.Exec.Shell = "sh"
	require.NoError(t, Write(path, cfg, false))

	loaded, err := NewLoader(filepath.Dir(path)).Load()
	require.NoError(t, err)
	assert.Equal(t, "sh", loaded.Exec.Shell)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files are cleaned up")
	}
}
