package cmdutil

import (
	"encoding/json"
	"fmt"

	"github.com/schmitthub/stackup/internal/iostreams"
)

// OutputJSON marshals data to stdout as indented JSON.
// Use this for machine-readable output when --json is set.
func OutputJSON(ios *iostreams.IOStreams, data any) error {
	enc := json.NewEncoder(ios.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintHelpHint prints a contextual help hint to stderr.
// cmdPath should be cmd.CommandPath() (e.g., "stackup config init")
func PrintHelpHint(ios *iostreams.IOStreams, cmdPath string) {
	fmt.Fprintf(ios.ErrOut, "\nRun '%s --help' for more information.\n", cmdPath)
}
