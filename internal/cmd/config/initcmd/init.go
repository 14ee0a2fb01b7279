package initcmd

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/iostreams"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the config init command.
type InitOptions struct {
	IOStreams *iostreams.IOStreams
	WorkDir   string

	Path  string
	Force bool
}

// NewCmdInit creates the config init command.
func NewCmdInit(f *cmdutil.Factory, runF func(context.Context, *InitOptions) error) *cobra.Command {
	opts := &InitOptions{
		IOStreams: f.IOStreams,
		WorkDir:   f.WorkDir,
	}

	cmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a starter stackup.yaml with every default spelled out",
		Example: `  # Create stackup.yaml in the current directory
  stackup config init

  # Overwrite an existing file
  stackup config init --force`,
		Args: cmdutil.RequiresMaxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Path = args[0]
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return initRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func initRun(_ context.Context, opts *InitOptions) error {
	ios := opts.IOStreams

	path := opts.Path
	if path == "" {
		path = config.ConfigFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.WorkDir, path)
	}

	err := config.Write(path, config.DefaultConfig(), !opts.Force)
	if errors.Is(err, config.ErrConfigExists) {
		_ = ios.PrintFailure("%s already exists", path)
		_ = ios.PrintInfo("Use --force to overwrite it")
		return cmdutil.SilentError
	}
	if err != nil {
		return err
	}

	return ios.PrintSuccess("Wrote %s", path)
}
