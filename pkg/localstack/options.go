package localstack

import (
	"io"
	"time"

	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/logger"
	"github.com/schmitthub/stackup/internal/signals"
)

// Option configures a Stack.
type Option func(*settings)

type settings struct {
	workDir    string
	configFile string
	cfg        *Config
	overrides  []func(*Config)

	logger        logger.Logger
	output        io.Writer
	hooks         *signals.ExitHooks
	handleSignals bool

	starter   Starter
	installer Installer
}

// WithConfig uses cfg as-is instead of loading stackup.yaml and the
// environment.
func WithConfig(cfg *Config) Option {
	return func(s *settings) { s.cfg = cfg }
}

// WithWorkDir sets the directory searched for stackup.yaml. Defaults to
// the current directory.
func WithWorkDir(dir string) Option {
	return func(s *settings) { s.workDir = dir }
}

// WithConfigFile loads configuration from path, which must exist.
func WithConfigFile(path string) Option {
	return func(s *settings) { s.configFile = path }
}

// WithInstallDir overrides install.dir.
func WithInstallDir(dir string) Option {
	return override(func(c *Config) { c.Install.Dir = dir })
}

// WithRepoURL overrides install.repo_url.
func WithRepoURL(url string) Option {
	return override(func(c *Config) { c.Install.RepoURL = url })
}

// WithRef overrides install.ref, the branch or tag to clone.
func WithRef(ref string) Option {
	return override(func(c *Config) { c.Install.Ref = ref })
}

// WithStartCommand overrides startup.command.
func WithStartCommand(command string) Option {
	return override(func(c *Config) { c.Startup.Command = command })
}

// WithStartupTimeout overrides startup.timeout. 0 waits without bound.
func WithStartupTimeout(d time.Duration) Option {
	return override(func(c *Config) { c.Startup.Timeout = d })
}

// WithKillOnFailure overrides startup.kill_on_failure.
func WithKillOnFailure(kill bool) Option {
	return override(func(c *Config) { c.Startup.KillOnFailure = kill })
}

// WithProbeServices overrides startup.probe_services.
func WithProbeServices(services ...string) Option {
	return override(func(c *Config) { c.Startup.ProbeServices = services })
}

// WithEndpointHost overrides endpoint.host.
func WithEndpointHost(host string) Option {
	return override(func(c *Config) { c.Endpoint.Host = host })
}

// WithLogger sets the logger for stackup's own messages. Without it the
// global logger is initialized from the logging section of the config of
// the first Stack created in the process.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithOutput sends the emulator's stdout and stderr to w instead of the
// rotated emulator.log.
func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.output = w }
}

// WithExitHooks registers the emulator's kill hook on hooks instead of
// signals.Default.
func WithExitHooks(hooks *signals.ExitHooks) Option {
	return func(s *settings) { s.hooks = hooks }
}

// WithSignalHandling installs the SIGINT/SIGTERM handler that runs the exit
// hooks. Enabled by default.
func WithSignalHandling(enabled bool) Option {
	return func(s *settings) { s.handleSignals = enabled }
}

// WithStarter replaces how the emulator process is launched.
func WithStarter(st Starter) Option {
	return func(s *settings) { s.starter = st }
}

// WithInstaller replaces the clone-and-build installer.
func WithInstaller(inst Installer) Option {
	return func(s *settings) { s.installer = inst }
}

func override(fn func(*Config)) Option {
	return func(s *settings) { s.overrides = append(s.overrides, fn) }
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}
