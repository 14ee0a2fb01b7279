package iostreams

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#E8714A")
	ColorSuccess = lipgloss.Color("#04B575")
	ColorWarning = lipgloss.Color("#FFCC00")
	ColorError   = lipgloss.Color("#FF5F87")
	ColorMuted   = lipgloss.Color("#626262")
	ColorInfo    = lipgloss.Color("#87CEEB")
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	CyanStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	DividerStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)
