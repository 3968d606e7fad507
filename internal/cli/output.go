package cli

import (
	"fmt"
	"strings"
)

// Table provides aligned columnar output.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row. Short rows are padded with empty cells.
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	for i, cell := range cells {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, cells)
}

// String renders the table.
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	var b strings.Builder

	for i, h := range t.headers {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(Header(padRight(h, t.widths[i])))
	}
	b.WriteString("\n")

	for i, w := range t.widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(Dim(strings.Repeat("─", w)))
	}
	b.WriteString("\n")

	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(t.widths) {
				break
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(padRight(cell, t.widths[i]))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// List provides marker-prefixed list output.
type List struct {
	items  []listItem
	indent int
}

type listItem struct {
	marker  string
	content string
	style   func(string) string
}

// NewList creates a new list.
func NewList() *List {
	return &List{indent: 2}
}

// Add adds a plain item.
func (l *List) Add(content string) {
	l.items = append(l.items, listItem{marker: "•", content: content})
}

// AddSuccess adds a success item.
func (l *List) AddSuccess(content string) {
	l.items = append(l.items, listItem{marker: "✓", content: content, style: Success})
}

// AddError adds an error item.
func (l *List) AddError(content string) {
	l.items = append(l.items, listItem{marker: "✗", content: content, style: Failed})
}

// AddWarning adds a warning item.
func (l *List) AddWarning(content string) {
	l.items = append(l.items, listItem{marker: "!", content: content, style: Warning})
}

// AddInfo adds an info item.
func (l *List) AddInfo(content string) {
	l.items = append(l.items, listItem{marker: "→", content: content, style: Info})
}

// String renders the list.
func (l *List) String() string {
	var b strings.Builder
	indent := strings.Repeat(" ", l.indent)

	for _, item := range l.items {
		b.WriteString(indent)
		if item.style != nil {
			b.WriteString(item.style(item.marker))
		} else {
			b.WriteString(item.marker)
		}
		b.WriteString(" ")
		b.WriteString(item.content)
		b.WriteString("\n")
	}

	return b.String()
}

// Section renders a header, an underline, and content.
func Section(title string, content string) string {
	var b strings.Builder
	b.WriteString(Header(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", len(title)))
	b.WriteString("\n")
	b.WriteString(content)
	return b.String()
}

// Indent indents all non-empty lines in content by the given amount.
func Indent(content string, spaces int) string {
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// FormatCount formats a count with singular/plural form.
func FormatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
