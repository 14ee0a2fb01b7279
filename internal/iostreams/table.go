package iostreams

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

// TablePrinter renders rows to IOStreams.Out. On a color TTY it draws bold
// headers and a divider; otherwise it emits plain tab-aligned columns that
// are safe to pipe into awk or cut.
type TablePrinter struct {
	ios     *IOStreams
	headers []string
	rows    [][]string
}

// NewTablePrinter creates a table with the given column headers.
func (s *IOStreams) NewTablePrinter(headers ...string) *TablePrinter {
	return &TablePrinter{ios: s, headers: headers}
}

// AddRow appends a data row. Missing columns render empty.
func (tp *TablePrinter) AddRow(cols ...string) {
	tp.rows = append(tp.rows, cols)
}

// Len returns the number of data rows.
func (tp *TablePrinter) Len() int {
	return len(tp.rows)
}

// Render writes the table.
func (tp *TablePrinter) Render() error {
	if len(tp.headers) == 0 {
		return nil
	}
	if tp.ios.IsOutputTTY() && tp.ios.ColorEnabled() {
		return tp.renderStyled()
	}
	return tp.renderPlain()
}

func (tp *TablePrinter) renderPlain() error {
	w := tabwriter.NewWriter(tp.ios.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(tp.headers, "\t"))
	for _, row := range tp.rows {
		fmt.Fprintln(w, strings.Join(tp.normalizeRow(row), "\t"))
	}
	return w.Flush()
}

func (tp *TablePrinter) renderStyled() error {
	const gap = 2
	widths := tp.columnWidths()

	// Shrink the widest column until the table fits the terminal.
	limit := tp.ios.TerminalWidth() - gap*(len(widths)-1)
	for total(widths) > limit {
		i := widest(widths)
		if widths[i] <= 4 {
			break
		}
		widths[i]--
	}

	spacing := strings.Repeat(" ", gap)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	parts := make([]string, len(tp.headers))
	for i, h := range tp.headers {
		parts[i] = headerStyle.Width(widths[i]).Render(truncate(h, widths[i]))
	}
	if _, err := fmt.Fprintln(tp.ios.Out, strings.Join(parts, spacing)); err != nil {
		return err
	}

	for i := range tp.headers {
		parts[i] = strings.Repeat("─", widths[i])
	}
	if _, err := fmt.Fprintln(tp.ios.Out, DividerStyle.Render(strings.Join(parts, spacing))); err != nil {
		return err
	}

	for _, row := range tp.rows {
		for i, col := range tp.normalizeRow(row) {
			parts[i] = lipgloss.NewStyle().Width(widths[i]).Render(truncate(col, widths[i]))
		}
		if _, err := fmt.Fprintln(tp.ios.Out, strings.Join(parts, spacing)); err != nil {
			return err
		}
	}
	return nil
}

func (tp *TablePrinter) columnWidths() []int {
	widths := make([]int, len(tp.headers))
	for i, h := range tp.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range tp.rows {
		for i, col := range tp.normalizeRow(row) {
			if w := lipgloss.Width(col); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (tp *TablePrinter) normalizeRow(row []string) []string {
	cols := make([]string, len(tp.headers))
	copy(cols, row)
	return cols
}

func total(widths []int) int {
	n := 0
	for _, w := range widths {
		n += w
	}
	return n
}

func widest(widths []int) int {
	idx := 0
	for i, w := range widths {
		if w > widths[idx] {
			idx = i
		}
	}
	return idx
}

// truncate shortens s to width runes, ending with an ellipsis when cut.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
