package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(os.TempDir(), "localstack_install_dir"), cfg.Install.Dir)
	assert.Equal(t, "https://github.com/atlassian/localstack", cfg.Install.RepoURL)
	assert.Equal(t, "make install", cfg.Install.BuildCommand)
	assert.Equal(t, 1, cfg.Install.Depth)
	assert.Equal(t, "bash", cfg.Exec.Shell)
	assert.Equal(t, "/usr/local/bin/", cfg.Exec.ExtraPath)
	assert.Equal(t, "exec make infra", cfg.Startup.Command)
	assert.Equal(t, "Ready.", cfg.Startup.ReadyMarker)
	assert.Equal(t, "localstack/constants.py", cfg.Startup.ConfigFile)
	assert.Equal(t, 10*time.Minute, cfg.Startup.Timeout)
	assert.True(t, cfg.Startup.KillOnFailure)
	assert.Equal(t, "http", cfg.Endpoint.Scheme)
	assert.Equal(t, "localhost", cfg.Endpoint.Host)
	assert.True(t, cfg.Logging.IsFileEnabled())
	assert.Empty(t, cfg.Startup.ProbeServices)

	require.NoError(t, NewValidator().Validate(cfg))
}

func TestLoader_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `
install:
  dir: /opt/localstack
  ref: v0.8.7
  use_git_cli: true
startup:
  timeout: 90s
  kill_on_failure: false
  probe_services: [s3, sqs]
logging:
  file_enabled: false
`)

	l := NewLoader(dir)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), l.UsedFile())
	assert.Equal(t, "/opt/localstack", cfg.Install.Dir)
	assert.Equal(t, "v0.8.7", cfg.Install.Ref)
	assert.True(t, cfg.Install.UseGitCLI)
	assert.Equal(t, 90*time.Second, cfg.Startup.Timeout)
	assert.False(t, cfg.Startup.KillOnFailure)
	assert.Equal(t, []string{"s3", "sqs"}, cfg.Startup.ProbeServices)
	assert.False(t, cfg.Logging.IsFileEnabled())

	// untouched keys keep their defaults
	assert.Equal(t, "make install", cfg.Install.BuildCommand)
	assert.Equal(t, "Ready.", cfg.Startup.ReadyMarker)
}

func TestLoader_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), "install:\n  dir: /from/file\n")

	t.Setenv("STACKUP_INSTALL_DIR", "/from/env")
	t.Setenv("STACKUP_STARTUP_TIMEOUT", "45s")
	t.Setenv("STACKUP_STARTUP_KILL_ON_FAILURE", "false")
	t.Setenv("STACKUP_ENDPOINT_HOST", "127.0.0.1")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.Install.Dir)
	assert.Equal(t, 45*time.Second, cfg.Startup.Timeout)
	assert.False(t, cfg.Startup.KillOnFailure)
	assert.Equal(t, "127.0.0.1", cfg.Endpoint.Host)
}

func TestLoader_ExplicitFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		_, err := NewLoader(dir, WithConfigFile("custom.yaml")).Load()
		require.Error(t, err)
		assert.True(t, IsConfigNotFound(err))
		assert.Contains(t, err.Error(), filepath.Join(dir, "custom.yaml"))
	})

	t.Run("relative to work dir", func(t *testing.T) {
		writeFile(t, filepath.Join(dir, "custom.yaml"), "exec:\n  shell: sh\n")
		l := NewLoader(dir, WithConfigFile("custom.yaml"))
		assert.True(t, l.Exists())

		cfg, err := l.Load()
		require.NoError(t, err)
		assert.Equal(t, "sh", cfg.Exec.Shell)
	})

	t.Run("absolute", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "abs.yaml")
		writeFile(t, path, "exec:\n  extra_path: /opt/bin\n")

		cfg, err := NewLoader(dir, WithConfigFile(path)).Load()
		require.NoError(t, err)
		assert.Equal(t, "/opt/bin", cfg.Exec.ExtraPath)
	})
}

func TestLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), "install: [unclosed\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
	assert.False(t, IsConfigNotFound(err))
}

func TestLoader_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("STACKUP_INSTALL_DIR", "~/localstack")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "localstack"), cfg.Install.Dir)
}
