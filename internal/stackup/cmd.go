package stackup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/schmitthub/stackup/internal/cmd/factory"
	"github.com/schmitthub/stackup/internal/cmd/root"
	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/iostreams"
	"github.com/schmitthub/stackup/internal/logger"
	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = ""
)

const (
	exitOk      = 0
	exitError   = 1
	exitUsage   = 2
	exitDataErr = 3
)

// Main is the entry point for the stackup CLI.
// It initializes the Factory, creates the root command, and executes it.
func Main() int {
	// Ensure logs are flushed on exit
	defer logger.CloseFileWriter()

	f := factory.New(Version, Commit)
	rootCmd := root.NewCmdRoot(f, Version, BuildDate)

	// ExecuteC returns the command that ran, for a contextual help hint.
	cmd, err := rootCmd.ExecuteC()
	return handleError(f.IOStreams, cmd, err)
}

// handleError renders err and maps it to a process exit code.
func handleError(ios *iostreams.IOStreams, cmd *cobra.Command, err error) int {
	if err == nil {
		return exitOk
	}

	var exitErr *cmdutil.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, cmdutil.SilentError) {
		return exitError
	}

	cs := ios.ColorScheme()
	fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), err)

	var flagErr *cmdutil.FlagError
	if errors.As(err, &flagErr) || isCobraUsageError(err) {
		if cmd != nil {
			cmdutil.PrintHelpHint(ios, cmd.CommandPath())
		}
		return exitUsage
	}

	var validationErr *config.MultiValidationError
	if errors.As(err, &validationErr) || config.IsConfigNotFound(err) {
		return exitDataErr
	}

	return exitError
}

// isCobraUsageError reports an unknown subcommand, which cobra raises as a
// plain error before any of our code runs.
func isCobraUsageError(err error) bool {
	return strings.HasPrefix(err.Error(), "unknown command")
}
