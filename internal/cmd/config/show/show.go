package show

import (
	"context"

	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/iostreams"
	"github.com/spf13/cobra"
)

// ShowOptions holds options for the config show command.
type ShowOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
}

// NewCmdShow creates the config show command.
func NewCmdShow(f *cmdutil.Factory, runF func(context.Context, *ShowOptions) error) *cobra.Command {
	opts := &ShowOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
	}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Prints the configuration after defaults, stackup.yaml and STACKUP_*
environment overrides have been merged and validated.`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return showRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func showRun(_ context.Context, opts *ShowOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	data, err := config.Render(cfg)
	if err != nil {
		return err
	}
	_, err = opts.IOStreams.Out.Write(data)
	return err
}
