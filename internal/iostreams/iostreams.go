// Package iostreams wraps the process's standard streams for the stackup CLI.
package iostreams

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// IOStreams provides access to standard input/output/error streams.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// Logger receives diagnostic entries from commands. Never nil in production.
	Logger Logger

	// -1 = unchecked, 0 = false, 1 = true
	isInputTTY  int
	isOutputTTY int
	isStderrTTY int

	// -1 = auto (detect from TTY), 0 = disabled, 1 = enabled
	colorEnabled int

	progressEnabled bool
	progress        *spinner.Spinner
	progressMu      sync.Mutex
	spinnerDisabled bool

	termWidthCache int
	termSizeCached bool
}

// NewIOStreams creates an IOStreams connected to standard streams.
func NewIOStreams() *IOStreams {
	ios := &IOStreams{
		In:           os.Stdin,
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		isInputTTY:   -1,
		isOutputTTY:  -1,
		isStderrTTY:  -1,
		colorEnabled: -1,
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		ios.colorEnabled = 0
	}

	// Spinners only make sense when a human is watching both streams.
	if ios.IsOutputTTY() && ios.IsStderrTTY() {
		ios.progressEnabled = true
	}
	if os.Getenv("STACKUP_SPINNER_DISABLED") != "" {
		ios.spinnerDisabled = true
	}
	return ios
}

func isTerminal(v any) int {
	if f, ok := v.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return 1
	}
	return 0
}

// IsInputTTY returns true if stdin is a terminal.
func (s *IOStreams) IsInputTTY() bool {
	if s.isInputTTY == -1 {
		s.isInputTTY = isTerminal(s.In)
	}
	return s.isInputTTY == 1
}

// IsOutputTTY returns true if stdout is a terminal.
func (s *IOStreams) IsOutputTTY() bool {
	if s.isOutputTTY == -1 {
		s.isOutputTTY = isTerminal(s.Out)
	}
	return s.isOutputTTY == 1
}

// IsStderrTTY returns true if stderr is a terminal.
func (s *IOStreams) IsStderrTTY() bool {
	if s.isStderrTTY == -1 {
		s.isStderrTTY = isTerminal(s.ErrOut)
	}
	return s.isStderrTTY == 1
}

// SetTTY overrides terminal detection for all three streams.
func (s *IOStreams) SetTTY(tty bool) {
	v := boolToInt(tty)
	s.isInputTTY, s.isOutputTTY, s.isStderrTTY = v, v, v
}

// ColorEnabled reports whether color output is enabled. In auto mode colors
// follow stdout's TTY state.
func (s *IOStreams) ColorEnabled() bool {
	if s.colorEnabled == -1 {
		return s.IsOutputTTY()
	}
	return s.colorEnabled == 1
}

// SetColorEnabled explicitly enables or disables color output.
func (s *IOStreams) SetColorEnabled(enabled bool) {
	s.colorEnabled = boolToInt(enabled)
}

// ColorScheme returns a ColorScheme configured for this IOStreams.
func (s *IOStreams) ColorScheme() *ColorScheme {
	return NewColorScheme(s.ColorEnabled())
}

// TerminalWidth returns the width of stdout in columns, or 80 when unknown.
func (s *IOStreams) TerminalWidth() int {
	if s.termSizeCached {
		return s.termWidthCache
	}
	width := 80
	if f, ok := s.Out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	s.termWidthCache = width
	s.termSizeCached = true
	return width
}

// SetTerminalWidth pins the reported terminal width.
func (s *IOStreams) SetTerminalWidth(width int) {
	s.termWidthCache = width
	s.termSizeCached = true
}

// SetSpinnerDisabled replaces the animated spinner with a one-line message.
func (s *IOStreams) SetSpinnerDisabled(v bool) {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	s.spinnerDisabled = v
}

// StartProgressIndicatorWithLabel starts (or relabels) the spinner on stderr.
func (s *IOStreams) StartProgressIndicatorWithLabel(label string) {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()

	if s.spinnerDisabled {
		if label == "" {
			label = "Working"
		}
		if !strings.HasSuffix(label, "...") {
			label += "..."
		}
		fmt.Fprintln(s.ErrOut, s.ColorScheme().Cyan(label))
		return
	}
	if !s.progressEnabled {
		return
	}

	if s.progress != nil {
		s.progress.Prefix = prefixFor(label)
		return
	}

	sp := spinner.New(spinner.CharSets[11], 120*time.Millisecond,
		spinner.WithWriter(s.ErrOut),
		spinner.WithColor("fgCyan"))
	sp.Prefix = prefixFor(label)
	sp.Start()
	s.progress = sp
}

func prefixFor(label string) string {
	if label == "" {
		return ""
	}
	return label + " "
}

// StopProgressIndicator stops the spinner if one is running.
func (s *IOStreams) StopProgressIndicator() {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()

	if s.progress == nil {
		return
	}
	s.progress.Stop()
	s.progress = nil
}

// RunWithProgress runs fn while showing a spinner labelled label.
func (s *IOStreams) RunWithProgress(label string, fn func() error) error {
	s.StartProgressIndicatorWithLabel(label)
	defer s.StopProgressIndicator()
	return fn()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
