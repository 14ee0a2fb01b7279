package iostreams

import "fmt"

// PrintSuccess prints a message prefixed with a success icon to stderr.
func (s *IOStreams) PrintSuccess(format string, args ...any) error {
	return s.printWithIcon(s.ColorScheme().SuccessIcon(), format, args...)
}

// PrintWarning prints a message prefixed with a warning icon to stderr.
func (s *IOStreams) PrintWarning(format string, args ...any) error {
	return s.printWithIcon(s.ColorScheme().WarningIcon(), format, args...)
}

// PrintInfo prints a message prefixed with an info icon to stderr.
func (s *IOStreams) PrintInfo(format string, args ...any) error {
	return s.printWithIcon(s.ColorScheme().InfoIcon(), format, args...)
}

// PrintFailure prints a message prefixed with a failure icon to stderr.
func (s *IOStreams) PrintFailure(format string, args ...any) error {
	return s.printWithIcon(s.ColorScheme().FailureIcon(), format, args...)
}

func (s *IOStreams) printWithIcon(icon, format string, args ...any) error {
	_, err := fmt.Fprintf(s.ErrOut, "%s %s\n", icon, fmt.Sprintf(format, args...))
	return err
}

// PrintEmpty prints "No {noun} found." to stderr, followed by indented hints.
func (s *IOStreams) PrintEmpty(noun string, hints ...string) error {
	cs := s.ColorScheme()
	if _, err := fmt.Fprintln(s.ErrOut, cs.Muted(fmt.Sprintf("No %s found.", noun))); err != nil {
		return err
	}
	for _, hint := range hints {
		if _, err := fmt.Fprintln(s.ErrOut, cs.Muted("  "+hint)); err != nil {
			return err
		}
	}
	return nil
}
