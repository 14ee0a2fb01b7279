package cmdutil

import (
	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/iostreams"
	"github.com/schmitthub/stackup/pkg/localstack"
)

// Factory provides shared dependencies for CLI commands.
// The struct defines what dependencies exist; internal/cmd/factory wires the
// real implementations. Commands extract only the fields they need into
// per-command Options structs.
type Factory struct {
	// Configuration from persistent flags (set before command execution)
	WorkDir    string
	ConfigFile string
	Debug      bool

	// Version info (set at build time via ldflags)
	Version string
	Commit  string

	IOStreams *iostreams.IOStreams

	// Config loads stackup.yaml plus STACKUP_* overrides, once.
	Config func() (*config.Config, error)

	// Stack builds an emulator handle from the loaded config. Extra options
	// are applied after the config.
	Stack func(opts ...localstack.Option) (*localstack.Stack, error)
}
