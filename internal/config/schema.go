package config

import (
	"time"

	"github.com/schmitthub/stackup/internal/logger"
)

// Config represents the root configuration structure for stackup.yaml
type Config struct {
	Install  InstallConfig  `yaml:"install" mapstructure:"install"`
	Exec     ExecConfig     `yaml:"exec" mapstructure:"exec"`
	Startup  StartupConfig  `yaml:"startup" mapstructure:"startup"`
	Endpoint EndpointConfig `yaml:"endpoint" mapstructure:"endpoint"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// InstallConfig defines where and how the emulator is installed
type InstallConfig struct {
	Dir          string        `yaml:"dir" mapstructure:"dir"`
	RepoURL      string        `yaml:"repo_url" mapstructure:"repo_url"`
	Ref          string        `yaml:"ref,omitempty" mapstructure:"ref"`
	Depth        int           `yaml:"depth" mapstructure:"depth"`
	BuildCommand string        `yaml:"build_command" mapstructure:"build_command"`
	UseGitCLI    bool          `yaml:"use_git_cli" mapstructure:"use_git_cli"`
	LockTimeout  time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`
}

// ExecConfig defines how shell commands are run
type ExecConfig struct {
	Shell     string `yaml:"shell" mapstructure:"shell"`
	ExtraPath string `yaml:"extra_path" mapstructure:"extra_path"`
}

// StartupConfig defines how the emulator is started and when it counts as ready
type StartupConfig struct {
	Command       string        `yaml:"command" mapstructure:"command"`
	ReadyMarker   string        `yaml:"ready_marker" mapstructure:"ready_marker"`
	ConfigFile    string        `yaml:"config_file" mapstructure:"config_file"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	ArtifactGrace time.Duration `yaml:"artifact_grace" mapstructure:"artifact_grace"`
	KillOnFailure bool          `yaml:"kill_on_failure" mapstructure:"kill_on_failure"`
	KillGrace     time.Duration `yaml:"kill_grace" mapstructure:"kill_grace"`
	ProbeServices []string      `yaml:"probe_services,omitempty" mapstructure:"probe_services"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`
}

// EndpointConfig defines how service URLs are rendered
type EndpointConfig struct {
	Scheme string `yaml:"scheme" mapstructure:"scheme"`
	Host   string `yaml:"host" mapstructure:"host"`
}

// LoggingConfig defines stackup's own log output
type LoggingConfig struct {
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
	Dir         string `yaml:"dir,omitempty" mapstructure:"dir"`
	FileEnabled *bool  `yaml:"file_enabled,omitempty" mapstructure:"file_enabled"`
	MaxSizeMB   int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxAgeDays  int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	MaxBackups  int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// IsFileEnabled returns whether file logging is enabled (default true).
func (c LoggingConfig) IsFileEnabled() bool {
	return c.FileEnabled == nil || *c.FileEnabled
}

// LoggerConfig converts c for logger.InitWithFile.
func (c LoggingConfig) LoggerConfig() *logger.LoggingConfig {
	return &logger.LoggingConfig{
		FileEnabled: c.FileEnabled,
		MaxSizeMB:   c.MaxSizeMB,
		MaxAgeDays:  c.MaxAgeDays,
		MaxBackups:  c.MaxBackups,
	}
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return "invalid " + e.Field + ": " + e.Message
	}
	return "invalid " + e.Field + ": " + e.Message + " (got " + formatValue(e.Value) + ")"
}
