package iostreams_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/stackup/internal/iostreams"
	"github.com/schmitthub/stackup/internal/iostreams/iostreamstest"
)

// forceColorProfile makes lipgloss emit ANSI escapes regardless of writer type.
func forceColorProfile(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestColorScheme_Disabled(t *testing.T) {
	cs := iostreams.NewColorScheme(false)

	assert.Equal(t, "text", cs.Red("text"))
	assert.Equal(t, "text", cs.Bold("text"))
	assert.Equal(t, "[ok]", cs.SuccessIcon())
	assert.Equal(t, "[warn]", cs.WarningIcon())
	assert.Equal(t, "[error]", cs.FailureIcon())
	assert.Equal(t, "[info]", cs.InfoIcon())
}

func TestColorScheme_Enabled(t *testing.T) {
	forceColorProfile(t)
	cs := iostreams.NewColorScheme(true)

	assert.Contains(t, cs.Green("ok"), "\x1b[")
	assert.Contains(t, cs.SuccessIcon(), "✓")
	assert.Contains(t, cs.FailureIcon(), "✗")
}

func TestPrintMessages(t *testing.T) {
	tests := []struct {
		name  string
		print func(*iostreams.IOStreams) error
		want  string
	}{
		{"success", func(s *iostreams.IOStreams) error { return s.PrintSuccess("installed %s", "v1") }, "[ok] installed v1\n"},
		{"warning", func(s *iostreams.IOStreams) error { return s.PrintWarning("slow") }, "[warn] slow\n"},
		{"info", func(s *iostreams.IOStreams) error { return s.PrintInfo("hello") }, "[info] hello\n"},
		{"failure", func(s *iostreams.IOStreams) error { return s.PrintFailure("boom") }, "[error] boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := iostreamstest.New()
			require.NoError(t, tt.print(tio.IOStreams))
			assert.Equal(t, tt.want, tio.ErrBuf.String())
			assert.Empty(t, tio.OutBuf.String())
		})
	}
}

func TestPrintEmpty(t *testing.T) {
	tio := iostreamstest.New()
	require.NoError(t, tio.PrintEmpty("endpoints", "run 'stackup install' first"))

	assert.Equal(t, "No endpoints found.\n  run 'stackup install' first\n", tio.ErrBuf.String())
}

func TestTablePrinter_Plain(t *testing.T) {
	tio := iostreamstest.New()
	tp := tio.NewTablePrinter("SERVICE", "PORT", "URL")
	tp.AddRow("s3", "4572", "http://localhost:4572/")
	tp.AddRow("sqs", "4576")

	require.Equal(t, 2, tp.Len())
	require.NoError(t, tp.Render())

	lines := strings.Split(strings.TrimRight(tio.OutBuf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"SERVICE", "PORT", "URL"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"s3", "4572", "http://localhost:4572/"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"sqs", "4576"}, strings.Fields(lines[2]))
	assert.NotContains(t, tio.OutBuf.String(), "\x1b[")
}

func TestTablePrinter_Styled(t *testing.T) {
	forceColorProfile(t)
	tio := iostreamstest.New()
	tio.SetTTY(true)
	tio.SetColorEnabled(true)
	tio.SetTerminalWidth(30)

	tp := tio.NewTablePrinter("SERVICE", "URL")
	tp.AddRow("dynamodbstreams", "http://localhost:4570/very/long/path")
	require.NoError(t, tp.Render())

	out := tio.OutBuf.String()
	assert.Contains(t, out, "SERVICE")
	assert.Contains(t, out, "─")
	assert.Contains(t, out, "…")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 30, line)
	}
}

func TestTablePrinter_NoHeaders(t *testing.T) {
	tio := iostreamstest.New()
	require.NoError(t, tio.NewTablePrinter().Render())
	assert.Empty(t, tio.OutBuf.String())
}

func TestRunWithProgress_TextualWhenDisabled(t *testing.T) {
	tio := iostreamstest.New()

	sentinel := errors.New("clone failed")
	err := tio.RunWithProgress("Installing emulator", func() error { return sentinel })

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "Installing emulator...\n", tio.ErrBuf.String())
}

func TestColorEnabled_AutoFollowsTTY(t *testing.T) {
	ios := &iostreams.IOStreams{}
	ios.SetTTY(false)
	ios.SetColorEnabled(false)
	assert.False(t, ios.ColorEnabled())

	ios.SetColorEnabled(true)
	assert.True(t, ios.ColorEnabled())
}
