package root

import (
	configcmd "github.com/schmitthub/stackup/internal/cmd/config"
	"github.com/schmitthub/stackup/internal/cmd/endpoints"
	"github.com/schmitthub/stackup/internal/cmd/install"
	"github.com/schmitthub/stackup/internal/cmd/up"
	versioncmd "github.com/schmitthub/stackup/internal/cmd/version"
	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/logger"
	"github.com/spf13/cobra"
)

// NewCmdRoot creates the root command for the stackup CLI.
func NewCmdRoot(f *cmdutil.Factory, version, buildDate string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stackup",
		Short: "Install, start and locate a local AWS emulator for tests",
		Long: `stackup installs the LocalStack emulator from source, starts it, waits
until it reports ready and tells you where each emulated service listens.

Quick start:
  stackup config init    # Write stackup.yaml with every default
  stackup install        # Clone and build the emulator
  stackup up             # Start it and print service endpoints
  stackup endpoints s3   # Endpoint of one service, without starting anything

Every config key can be overridden from the environment as
STACKUP_<SECTION>_<KEY>, for example STACKUP_INSTALL_DIR.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initializeLogger(f)

			logger.Debug().
				Str("version", f.Version).
				Str("workdir", f.WorkDir).
				Bool("debug", f.Debug).
				Msg("stackup starting")

			return nil
		},
		Version: f.Version,
	}

	cmd.PersistentFlags().BoolVarP(&f.Debug, "debug", "D", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&f.ConfigFile, "config", "c", "", "Path to a stackup.yaml to use instead of the one in the working directory")
	cmd.PersistentFlags().StringVarP(&f.WorkDir, "chdir", "C", f.WorkDir, "Directory to look for stackup.yaml in")

	cmd.SetVersionTemplate(versioncmd.Format(version, buildDate))
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmdutil.FlagErrorWrap(err)
	})

	cmd.AddCommand(install.NewCmdInstall(f, nil))
	cmd.AddCommand(up.NewCmdUp(f, nil))
	cmd.AddCommand(endpoints.NewCmdEndpoints(f, nil))
	cmd.AddCommand(configcmd.NewCmdConfig(f))
	cmd.AddCommand(versioncmd.NewCmdVersion(f, version, buildDate))

	return cmd
}

// initializeLogger sets up file logging from the config's logging section.
// Falls back to console-only logging when the config cannot be loaded; the
// command itself reports that error.
func initializeLogger(f *cmdutil.Factory) {
	cfg, err := f.Config()
	if err != nil {
		logger.Init(f.Debug)
		return
	}

	debug := f.Debug || cfg.Logging.Debug
	if err := logger.InitWithFile(debug, cfg.Logging.Dir, cfg.Logging.LoggerConfig()); err != nil {
		logger.Init(debug)
		logger.Warn().Err(err).Msg("file logging unavailable: failed to initialize file writer")
	}
}
