package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the default configuration file name
	ConfigFileName = "stackup.yaml"
	// EnvPrefix prefixes every environment override, e.g. STACKUP_INSTALL_DIR
	EnvPrefix = "STACKUP"

	DefaultRepoURL        = "https://github.com/atlassian/localstack"
	DefaultBuildCommand   = "make install"
	DefaultStartCommand   = "exec make infra"
	DefaultReadyMarker    = "Ready."
	DefaultConfigFile     = "localstack/constants.py"
	DefaultShell          = "bash"
	DefaultExtraPath      = "/usr/local/bin/"
	DefaultInstallDirName = "localstack_install_dir"
	DefaultLogsDirName    = "stackup_logs"
)

// DefaultInstallDir returns $TMPDIR/localstack_install_dir.
func DefaultInstallDir() string {
	return filepath.Join(os.TempDir(), DefaultInstallDirName)
}

// DefaultLogsDir returns $TMPDIR/stackup_logs.
func DefaultLogsDir() string {
	return filepath.Join(os.TempDir(), DefaultLogsDirName)
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	fileEnabled := true
	return &Config{
		Install: InstallConfig{
			Dir:          DefaultInstallDir(),
			RepoURL:      DefaultRepoURL,
			Depth:        1,
			BuildCommand: DefaultBuildCommand,
			LockTimeout:  15 * time.Minute,
		},
		Exec: ExecConfig{
			Shell:     DefaultShell,
			ExtraPath: DefaultExtraPath,
		},
		Startup: StartupConfig{
			Command:       DefaultStartCommand,
			ReadyMarker:   DefaultReadyMarker,
			ConfigFile:    DefaultConfigFile,
			Timeout:       10 * time.Minute,
			ArtifactGrace: 5 * time.Second,
			KillOnFailure: true,
			KillGrace:     5 * time.Second,
			ProbeTimeout:  30 * time.Second,
		},
		Endpoint: EndpointConfig{
			Scheme: "http",
			Host:   "localhost",
		},
		Logging: LoggingConfig{
			Dir:         DefaultLogsDir(),
			FileEnabled: &fileEnabled,
			MaxSizeMB:   50,
			MaxAgeDays:  7,
			MaxBackups:  3,
		},
	}
}

// defaultValues flattens DefaultConfig into viper keys. Every key needs a
// default so AutomaticEnv overrides reach Unmarshal.
func defaultValues() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"install.dir":             d.Install.Dir,
		"install.repo_url":        d.Install.RepoURL,
		"install.ref":             d.Install.Ref,
		"install.depth":           d.Install.Depth,
		"install.build_command":   d.Install.BuildCommand,
		"install.use_git_cli":     d.Install.UseGitCLI,
		"install.lock_timeout":    d.Install.LockTimeout,
		"exec.shell":              d.Exec.Shell,
		"exec.extra_path":         d.Exec.ExtraPath,
		"startup.command":         d.Startup.Command,
		"startup.ready_marker":    d.Startup.ReadyMarker,
		"startup.config_file":     d.Startup.ConfigFile,
		"startup.timeout":         d.Startup.Timeout,
		"startup.artifact_grace":  d.Startup.ArtifactGrace,
		"startup.kill_on_failure": d.Startup.KillOnFailure,
		"startup.kill_grace":      d.Startup.KillGrace,
		"startup.probe_services":  d.Startup.ProbeServices,
		"startup.probe_timeout":   d.Startup.ProbeTimeout,
		"endpoint.scheme":         d.Endpoint.Scheme,
		"endpoint.host":           d.Endpoint.Host,
		"logging.debug":           d.Logging.Debug,
		"logging.dir":             d.Logging.Dir,
		"logging.file_enabled":    *d.Logging.FileEnabled,
		"logging.max_size_mb":     d.Logging.MaxSizeMB,
		"logging.max_age_days":    d.Logging.MaxAgeDays,
		"logging.max_backups":     d.Logging.MaxBackups,
	}
}

func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
