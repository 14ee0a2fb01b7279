package factory

import (
	"os"
	"sync"

	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/iostreams"
	"github.com/schmitthub/stackup/internal/logger"
	"github.com/schmitthub/stackup/pkg/localstack"
)

// New creates a fully-wired Factory with lazy-initialized dependency closures.
// Called exactly once at the CLI entry point (internal/stackup/cmd.go).
// Tests should NOT import this package; construct &cmdutil.Factory{} directly.
func New(version, commit string) *cmdutil.Factory {
	ios := iostreams.NewIOStreams()
	ios.Logger = logger.Default()

	f := &cmdutil.Factory{
		Version:   version,
		Commit:    commit,
		IOStreams: ios,
	}
	if wd, err := os.Getwd(); err == nil {
		f.WorkDir = wd
	}

	// WorkDir and ConfigFile are read on first use, after flag parsing.
	var (
		configOnce sync.Once
		configData *config.Config
		configErr  error
	)
	f.Config = func() (*config.Config, error) {
		configOnce.Do(func() {
			var opts []config.LoaderOption
			if f.ConfigFile != "" {
				opts = append(opts, config.WithConfigFile(f.ConfigFile))
			}
			configData, configErr = config.NewLoader(f.WorkDir, opts...).Load()
			if configErr == nil {
				configErr = config.NewValidator().Validate(configData)
			}
		})
		return configData, configErr
	}

	f.Stack = func(opts ...localstack.Option) (*localstack.Stack, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		base := []localstack.Option{
			localstack.WithConfig(cfg),
			localstack.WithLogger(logger.Default()),
		}
		return localstack.New(append(base, opts...)...)
	}

	return f
}
