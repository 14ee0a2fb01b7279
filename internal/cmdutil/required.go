package cmdutil

import (
	"github.com/spf13/cobra"
)

// NoArgs rejects positional arguments.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if cmd.HasSubCommands() {
		return FlagErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return FlagErrorf("'%s' accepts no arguments", cmd.CommandPath())
}

// RequiresMaxArgs returns an error if there are more than maxArgs args.
func RequiresMaxArgs(maxArgs int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) <= maxArgs {
			return nil
		}
		return FlagErrorf("'%s' requires at most %d %s", cmd.CommandPath(), maxArgs, pluralize("argument", maxArgs))
	}
}

func pluralize(word string, number int) string {
	if number == 1 {
		return word
	}
	return word + "s"
}
