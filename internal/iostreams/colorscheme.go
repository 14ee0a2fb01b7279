package iostreams

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ColorScheme formats text for the terminal. When colors are disabled every
// method returns its input unmodified.
type ColorScheme struct {
	enabled bool
}

// NewColorScheme creates a new ColorScheme.
func NewColorScheme(enabled bool) *ColorScheme {
	return &ColorScheme{enabled: enabled}
}

// Enabled returns whether colors are enabled.
func (cs *ColorScheme) Enabled() bool {
	return cs.enabled
}

func (cs *ColorScheme) render(style lipgloss.Style, s string) string {
	if !cs.enabled {
		return s
	}
	return style.Render(s)
}

func (cs *ColorScheme) Red(s string) string    { return cs.render(ErrorStyle, s) }
func (cs *ColorScheme) Green(s string) string  { return cs.render(SuccessStyle, s) }
func (cs *ColorScheme) Yellow(s string) string { return cs.render(WarningStyle, s) }
func (cs *ColorScheme) Cyan(s string) string   { return cs.render(CyanStyle, s) }
func (cs *ColorScheme) Muted(s string) string  { return cs.render(MutedStyle, s) }
func (cs *ColorScheme) Bold(s string) string   { return cs.render(BoldStyle, s) }
func (cs *ColorScheme) Title(s string) string  { return cs.render(TitleStyle, s) }

// Redf returns a formatted string in red.
func (cs *ColorScheme) Redf(format string, a ...any) string {
	return cs.Red(fmt.Sprintf(format, a...))
}

// SuccessIcon returns a green check, or [ok] without colors.
func (cs *ColorScheme) SuccessIcon() string { return cs.icon(cs.Green, "✓", "[ok]") }

// WarningIcon returns a yellow bang, or [warn] without colors.
func (cs *ColorScheme) WarningIcon() string { return cs.icon(cs.Yellow, "!", "[warn]") }

// FailureIcon returns a red cross, or [error] without colors.
func (cs *ColorScheme) FailureIcon() string { return cs.icon(cs.Red, "✗", "[error]") }

// InfoIcon returns a cyan info mark, or [info] without colors.
func (cs *ColorScheme) InfoIcon() string { return cs.icon(cs.Cyan, "ℹ", "[info]") }

func (cs *ColorScheme) icon(paint func(string) string, glyph, plain string) string {
	if cs.enabled {
		return paint(glyph)
	}
	return plain
}
