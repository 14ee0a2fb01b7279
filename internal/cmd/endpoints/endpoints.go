package endpoints

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/endpoint"
	"github.com/schmitthub/stackup/internal/iostreams"
	"github.com/spf13/cobra"
)

// EndpointsOptions holds options for the endpoints command.
type EndpointsOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)

	Services []string
	JSON     bool
}

// NewCmdEndpoints creates the endpoints command.
func NewCmdEndpoints(f *cmdutil.Factory, runF func(context.Context, *EndpointsOptions) error) *cobra.Command {
	opts := &EndpointsOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
	}

	cmd := &cobra.Command{
		Use:   "endpoints [SERVICE...]",
		Short: "Print service endpoints of an installed emulator",
		Long: `Reads the port assignments from the emulator's configuration file in the
install directory and prints the base URL of each service. The emulator is
not started.

Service names are case-insensitive. Known services: ` + strings.Join(endpoint.KnownServices(), ", ") + `.`,
		Example: `  # All services
  stackup endpoints

  # Just S3, as JSON
  stackup endpoints s3 --json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Services = args
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return endpointsRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print endpoints as JSON")

	return cmd
}

func endpointsRun(_ context.Context, opts *EndpointsOptions) error {
	ios := opts.IOStreams

	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Install.Dir, cfg.Startup.ConfigFile)
	ios.Logger.Debug().Str("path", path).Msg("reading emulator config")

	table, err := endpoint.ParseFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no emulator installed in %s; run 'stackup install' first", cfg.Install.Dir)
	}
	if err != nil {
		return err
	}

	resolver := endpoint.Resolver{Scheme: cfg.Endpoint.Scheme, Host: cfg.Endpoint.Host}
	rows, err := cmdutil.EndpointRows(table, resolver, opts.Services)
	if err != nil {
		return err
	}
	return cmdutil.PrintEndpoints(ios, rows, opts.JSON)
}
