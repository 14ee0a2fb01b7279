package install

import (
	"context"
	"fmt"

	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/iostreams"
	"github.com/schmitthub/stackup/pkg/localstack"
	"github.com/spf13/cobra"
)

// InstallOptions holds options for the install command.
type InstallOptions struct {
	IOStreams *iostreams.IOStreams
	Stack     func(opts ...localstack.Option) (*localstack.Stack, error)

	Dir     string
	RepoURL string
	Ref     string
}

// NewCmdInstall creates the install command.
func NewCmdInstall(f *cmdutil.Factory, runF func(context.Context, *InstallOptions) error) *cobra.Command {
	opts := &InstallOptions{
		IOStreams: f.IOStreams,
		Stack:     f.Stack,
	}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Clone and build the emulator without starting it",
		Long: `Clones the emulator repository into the install directory and runs the
build command. Does nothing when the install directory already exists.

Concurrent installs, including from other processes, serialize on a lock
file next to the install directory.`,
		Example: `  # Install into the default directory
  stackup install

  # Install a specific tag somewhere else
  stackup install --dir /opt/localstack --ref v0.8.7`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return installRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Install directory (overrides install.dir)")
	cmd.Flags().StringVar(&opts.RepoURL, "repo", "", "Repository to clone (overrides install.repo_url)")
	cmd.Flags().StringVar(&opts.Ref, "ref", "", "Branch or tag to clone (overrides install.ref)")

	return cmd
}

func installRun(ctx context.Context, opts *InstallOptions) error {
	ios := opts.IOStreams

	stack, err := opts.Stack(overrides(opts)...)
	if err != nil {
		return err
	}

	ios.Logger.Debug().Str("dir", stack.InstallDir()).Msg("installing emulator")

	err = ios.RunWithProgress(fmt.Sprintf("Installing emulator into %s", stack.InstallDir()), func() error {
		return stack.Install(ctx)
	})
	if err != nil {
		return err
	}

	return ios.PrintSuccess("Emulator installed in %s", stack.InstallDir())
}

func overrides(opts *InstallOptions) []localstack.Option {
	var out []localstack.Option
	if opts.Dir != "" {
		out = append(out, localstack.WithInstallDir(opts.Dir))
	}
	if opts.RepoURL != "" {
		out = append(out, localstack.WithRepoURL(opts.RepoURL))
	}
	if opts.Ref != "" {
		out = append(out, localstack.WithRef(opts.Ref))
	}
	return out
}
