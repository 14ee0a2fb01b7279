package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/schmitthub/stackup/internal/endpoint"
)

// Validator validates a Config for correctness
type Validator struct {
	errors []error
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{errors: []error{}}
}

// Validate checks the configuration for errors and returns all found issues
func (v *Validator) Validate(cfg *Config) error {
	v.errors = []error{}

	v.validateInstall(cfg)
	v.validateExec(cfg)
	v.validateStartup(cfg)
	v.validateEndpoint(cfg)
	v.validateLogging(cfg)

	if len(v.errors) > 0 {
		return &MultiValidationError{Errors: v.errors}
	}
	return nil
}

func (v *Validator) addError(field, message string, value interface{}) {
	v.errors = append(v.errors, &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
}

// validateCommand requires a non-empty command that tokenizes like a shell would.
func (v *Validator) validateCommand(field, command string) {
	if strings.TrimSpace(command) == "" {
		v.addError(field, "is required", nil)
		return
	}
	if _, err := shlex.Split(command); err != nil {
		v.addError(field, "is not a valid shell command: "+err.Error(), command)
	}
}

func (v *Validator) validateInstall(cfg *Config) {
	if cfg.Install.Dir == "" {
		v.addError("install.dir", "is required", nil)
	} else if !filepath.IsAbs(cfg.Install.Dir) {
		v.addError("install.dir", "must be an absolute path", cfg.Install.Dir)
	}

	if cfg.Install.RepoURL == "" {
		v.addError("install.repo_url", "is required", nil)
	} else if strings.ContainsAny(cfg.Install.RepoURL, " \t\n") {
		v.addError("install.repo_url", "contains whitespace", cfg.Install.RepoURL)
	}

	if cfg.Install.Depth < 0 {
		v.addError("install.depth", "must not be negative", cfg.Install.Depth)
	}
	if cfg.Install.LockTimeout < 0 {
		v.addError("install.lock_timeout", "must not be negative", cfg.Install.LockTimeout)
	}

	v.validateCommand("install.build_command", cfg.Install.BuildCommand)
}

func (v *Validator) validateExec(cfg *Config) {
	if cfg.Exec.Shell == "" {
		v.addError("exec.shell", "is required", nil)
	} else if strings.ContainsAny(cfg.Exec.Shell, " \t\n") {
		v.addError("exec.shell", "must be a single executable", cfg.Exec.Shell)
	}
}

func (v *Validator) validateStartup(cfg *Config) {
	v.validateCommand("startup.command", cfg.Startup.Command)

	if cfg.Startup.ReadyMarker == "" {
		v.addError("startup.ready_marker", "is required", nil)
	} else if strings.ContainsAny(cfg.Startup.ReadyMarker, "\r\n") {
		v.addError("startup.ready_marker", "must be a single line", cfg.Startup.ReadyMarker)
	}

	if cfg.Startup.ConfigFile == "" {
		v.addError("startup.config_file", "is required", nil)
	} else if filepath.IsAbs(cfg.Startup.ConfigFile) {
		v.addError("startup.config_file", "must be relative to install.dir", cfg.Startup.ConfigFile)
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"startup.timeout", cfg.Startup.Timeout},
		{"startup.artifact_grace", cfg.Startup.ArtifactGrace},
		{"startup.kill_grace", cfg.Startup.KillGrace},
		{"startup.probe_timeout", cfg.Startup.ProbeTimeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			v.addError(d.field, "must not be negative", d.value)
		}
	}

	for i, svc := range cfg.Startup.ProbeServices {
		if strings.TrimSpace(svc) == "" || strings.ContainsAny(svc, " \t\n=") {
			v.addError(fmt.Sprintf("startup.probe_services[%d]", i), "invalid service name", svc)
		}
	}
}

func (v *Validator) validateEndpoint(cfg *Config) {
	if cfg.Endpoint.Scheme == "" {
		v.addError("endpoint.scheme", "is required", nil)
	}
	if cfg.Endpoint.Host == "" {
		v.addError("endpoint.host", "is required", nil)
	}
	if cfg.Endpoint.Scheme == "" || cfg.Endpoint.Host == "" {
		return
	}

	r := endpoint.Resolver{Scheme: cfg.Endpoint.Scheme, Host: cfg.Endpoint.Host}
	if _, err := url.Parse(r.URL(1)); err != nil {
		v.addError("endpoint", "does not render a valid URL: "+err.Error(), r.URL(1))
	}
}

func (v *Validator) validateLogging(cfg *Config) {
	if cfg.Logging.MaxSizeMB < 0 {
		v.addError("logging.max_size_mb", "must not be negative", cfg.Logging.MaxSizeMB)
	}
	if cfg.Logging.MaxAgeDays < 0 {
		v.addError("logging.max_age_days", "must not be negative", cfg.Logging.MaxAgeDays)
	}
	if cfg.Logging.MaxBackups < 0 {
		v.addError("logging.max_backups", "must not be negative", cfg.Logging.MaxBackups)
	}
}

// MultiValidationError holds multiple validation errors
type MultiValidationError struct {
	Errors []error
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d configuration errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidationErrors returns the individual errors
func (e *MultiValidationError) ValidationErrors() []error {
	return e.Errors
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *MultiValidationError) Unwrap() []error {
	return e.Errors
}
