package config

import (
	"github.com/schmitthub/stackup/internal/cmd/config/initcmd"
	"github.com/schmitthub/stackup/internal/cmd/config/show"
	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command group.
func NewCmdConfig(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage stackup.yaml",
		Args:  cmdutil.NoArgs,
	}

	cmd.AddCommand(initcmd.NewCmdInit(f, nil))
	cmd.AddCommand(show.NewCmdShow(f, nil))

	return cmd
}
