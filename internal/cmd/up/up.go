package up

import (
	"context"
	"errors"
	"time"

	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/endpoint"
	"github.com/schmitthub/stackup/internal/iostreams"
	"github.com/schmitthub/stackup/internal/signals"
	"github.com/schmitthub/stackup/pkg/localstack"
	"github.com/spf13/cobra"
)

// UpOptions holds options for the up command.
type UpOptions struct {
	IOStreams *iostreams.IOStreams
	Stack     func(opts ...localstack.Option) (*localstack.Stack, error)

	Timeout time.Duration
	Probe   []string
	Stream  bool
	Once    bool
	JSON    bool
}

// NewCmdUp creates the up command.
func NewCmdUp(f *cmdutil.Factory, runF func(context.Context, *UpOptions) error) *cobra.Command {
	opts := &UpOptions{
		IOStreams: f.IOStreams,
		Stack:     f.Stack,
	}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Install if needed, start the emulator and print its endpoints",
		Long: `Installs the emulator if the install directory is missing, starts it,
waits for the ready marker and prints the endpoint of every service.

The emulator keeps running until interrupted with Ctrl+C or until it exits
on its own. With --once it is stopped again right after the endpoints are
printed, which makes a quick smoke test of the install.`,
		Example: `  # Start and keep running
  stackup up

  # Start, print endpoints as JSON, stop
  stackup up --once --json

  # Wait until S3 and SQS accept connections before reporting ready
  stackup up --probe s3 --probe sqs`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Timeout < 0 {
				return cmdutil.FlagErrorf("--timeout must not be negative")
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return upRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "How long to wait for the ready marker (overrides startup.timeout)")
	cmd.Flags().StringSliceVar(&opts.Probe, "probe", nil, "Service to probe over TCP before reporting ready (repeatable)")
	cmd.Flags().BoolVar(&opts.Stream, "stream", false, "Stream emulator output to stderr instead of the log file")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "Stop the emulator after printing endpoints")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print endpoints as JSON")

	return cmd
}

func upRun(ctx context.Context, opts *UpOptions) error {
	ios := opts.IOStreams

	ctx, cancel := signals.SetupSignalContext(ctx)
	defer cancel()

	// Interrupts cancel ctx; teardown runs in the defer below.
	stackOpts := []localstack.Option{localstack.WithSignalHandling(false)}
	if opts.Timeout > 0 {
		stackOpts = append(stackOpts, localstack.WithStartupTimeout(opts.Timeout))
	}
	if len(opts.Probe) > 0 {
		stackOpts = append(stackOpts, localstack.WithProbeServices(opts.Probe...))
	}
	if opts.Stream {
		stackOpts = append(stackOpts, localstack.WithOutput(ios.ErrOut))
	}

	stack, err := opts.Stack(stackOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if terr := stack.Teardown(); terr != nil {
			ios.Logger.Warn().Err(terr).Msg("emulator teardown failed")
			_ = ios.PrintWarning("Failed to stop emulator: %v", terr)
		}
	}()

	err = ios.RunWithProgress("Starting emulator", func() error {
		return stack.EnsureRunning(ctx)
	})
	if err != nil {
		return err
	}

	snap := stack.Snapshot()
	cfg := stack.Config()
	resolver := endpoint.Resolver{Scheme: cfg.Endpoint.Scheme, Host: cfg.Endpoint.Host}
	rows, err := cmdutil.EndpointRows(snap.Table, resolver, nil)
	if err != nil {
		return err
	}

	_ = ios.PrintSuccess("Emulator ready in %s (pid %d)", snap.Startup.Round(time.Millisecond), snap.PID)
	if err := cmdutil.PrintEndpoints(ios, rows, opts.JSON); err != nil {
		return err
	}

	if opts.Once {
		return nil
	}

	_ = ios.PrintInfo("Press Ctrl+C to stop the emulator")
	select {
	case <-ctx.Done():
		if errors.Is(context.Cause(ctx), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case <-stack.Exited():
		_ = ios.PrintFailure("Emulator exited unexpectedly")
		return cmdutil.SilentError
	}
}
