package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles loading of stackup configuration from an optional
// stackup.yaml, environment overrides and built-in defaults.
type Loader struct {
	workDir    string
	configFile string
	viper      *viper.Viper
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConfigFile sets an explicit config file path. Unlike the
// stackup.yaml lookup in the working directory, an explicit file must exist.
func WithConfigFile(path string) LoaderOption {
	return func(l *Loader) { l.configFile = path }
}

// NewLoader creates a new configuration loader for the given working directory
func NewLoader(workDir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		workDir: workDir,
		viper:   viper.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves defaults, the config file (if any) and STACKUP_* environment
// overrides, in increasing precedence.
func (l *Loader) Load() (*Config, error) {
	v := l.viper
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}

	path, explicit := l.ConfigPath(), l.configFile != ""
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if explicit {
			return nil, &ConfigNotFoundError{Path: path}
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Install.Dir = expandHome(cfg.Install.Dir)
	cfg.Logging.Dir = expandHome(cfg.Logging.Dir)

	return &cfg, nil
}

// ConfigPath returns the full path to the config file
func (l *Loader) ConfigPath() string {
	if l.configFile != "" {
		if filepath.IsAbs(l.configFile) {
			return l.configFile
		}
		return filepath.Join(l.workDir, l.configFile)
	}
	return filepath.Join(l.workDir, ConfigFileName)
}

// Exists checks if the configuration file exists
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.ConfigPath())
	return err == nil
}

// UsedFile returns the config file Load read, or "" when only defaults and
// environment were used.
func (l *Loader) UsedFile() string {
	return l.viper.ConfigFileUsed()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ConfigNotFoundError is returned when an explicitly requested config file doesn't exist
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

// IsConfigNotFound returns true if the error is a ConfigNotFoundError
func IsConfigNotFound(err error) bool {
	var nf *ConfigNotFoundError
	return errors.As(err, &nf)
}
