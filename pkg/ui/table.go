package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column describes one column of a Table
type Column struct {
	Header string
	Width  int  // minimum display width
	Right  bool // right-align cells
}

type tableRow struct {
	cells []string
	style lipgloss.Style
}

// Table lines up rows under a header, measuring cells by display width so
// wide file names keep their columns aligned.
type Table struct {
	columns []Column
	rows    []tableRow
}

// NewTable creates a table with the given columns
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// AddRow adds a row in the default row style
func (t *Table) AddRow(cells ...string) {
	t.AddStyledRow(StyleTableRow, cells...)
}

// AddStyledRow adds a row rendered with style
func (t *Table) AddStyledRow(style lipgloss.Style, cells ...string) {
	t.rows = append(t.rows, tableRow{cells: cells, style: style})
}

// Render returns the header, a separator and one line per row
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	widths := t.widths()
	line := func(cells []string, header bool) string {
		parts := make([]string, len(t.columns))
		for i, col := range t.columns {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = pad(cell, widths[i], col.Right && !header)
		}
		return strings.Join(parts, "  ")
	}

	var b strings.Builder

	headers := make([]string, len(t.columns))
	rules := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = col.Header
		rules[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(StyleTableHeader.Render(line(headers, true)))
	b.WriteString("\n")
	b.WriteString(StyleTableBorder.Render(strings.Join(rules, "  ")))
	b.WriteString("\n")

	for _, row := range t.rows {
		b.WriteString(row.style.Render(line(row.cells, false)))
		b.WriteString("\n")
	}

	return b.String()
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = max(col.Width, lipgloss.Width(col.Header))
	}
	for _, row := range t.rows {
		for i, cell := range row.cells {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

// pad fills s with spaces up to width display cells
func pad(s string, width int, right bool) string {
	fill := width - lipgloss.Width(s)
	if fill <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", fill) + s
	}
	return s + strings.Repeat(" ", fill)
}
