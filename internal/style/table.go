package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders a small left-aligned table with a styled header row. Column
// widths are sized to the content; no truncation happens, since callers
// render short operational facts (hosts, pids, ages), not prose.
type Table struct {
	headers []string
	rows    [][]string
	indent  string
}

// NewTable creates a table with the given header row.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, indent: "  "}
}

// AddRow appends one row; missing cells render empty.
func (t *Table) AddRow(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	return t
}

// Render returns the formatted table.
func (t *Table) Render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(t.indent)
	for i, h := range t.headers {
		sb.WriteString(pad(Header.Render(h), lipgloss.Width(h), widths[i]))
		if i < len(t.headers)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")

	for _, row := range t.rows {
		sb.WriteString(t.indent)
		for i := range t.headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(pad(cell, lipgloss.Width(cell), widths[i]))
			if i < len(t.headers)-1 {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// pad right-pads styled text to width using its visible length.
func pad(text string, visible, width int) string {
	if visible >= width {
		return text
	}
	return text + strings.Repeat(" ", width-visible)
}
