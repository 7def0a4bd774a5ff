package pod

import (
	"fmt"
	"io"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// FormatFunc is a callback to format/colorize cell values
type FormatFunc func(value string) string

// ColumnSpec defines a column's properties
type ColumnSpec struct {
	Header     string
	BlankValue string     // Value to show for empty cells (default: "-")
	FormatFunc FormatFunc // Optional formatter/colorizer, applied at render time
	MinWidth   int        // Minimum column width
	AlignRight bool
}

// Table represents a formatted table
type Table struct {
	columns []ColumnSpec
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given column specifications
func NewTable(cols ...ColumnSpec) *Table {
	t := &Table{
		columns: cols,
		widths:  make([]int, len(cols)),
	}

	for i := range t.columns {
		if t.columns[i].BlankValue == "" {
			t.columns[i].BlankValue = "-"
		}
	}

	t.Reset()
	return t
}

// Reset drops all rows, keeping the columns
func (t *Table) Reset() {
	t.rows = t.rows[:0]
	for i, col := range t.columns {
		t.widths[i] = max(col.MinWidth, len(col.Header))
	}
}

// AddRow adds a row of data to the table. Missing and empty cells take the column's BlankValue.
func (t *Table) AddRow(data ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(data) && data[i] != "" {
			row[i] = data[i]
		} else {
			row[i] = t.columns[i].BlankValue
		}

		if n := visibleLength(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}

	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table to the given writer
func (t *Table) Render(w io.Writer) error {
	headers := make([]string, len(t.columns))
	sep := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = t.pad(i, col.Header)
		sep[i] = strings.Repeat("-", t.widths[i])
	}

	if _, err := fmt.Fprintln(w, strings.Join(headers, " ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Join(sep, " ")); err != nil {
		return err
	}

	for _, row := range t.rows {
		formatted := make([]string, len(row))
		for i, val := range row {
			// pad before colouring so escape codes don't skew widths
			cell := t.pad(i, val)
			if f := t.columns[i].FormatFunc; f != nil && val != t.columns[i].BlankValue {
				cell = strings.Replace(cell, val, f(val), 1)
			}
			formatted[i] = cell
		}
		if _, err := fmt.Fprintln(w, strings.Join(formatted, " ")); err != nil {
			return err
		}
	}

	return nil
}

func (t *Table) pad(col int, s string) string {
	n := visibleLength(s)
	if n >= t.widths[col] {
		return s
	}

	fill := strings.Repeat(" ", t.widths[col]-n)
	if t.columns[col].AlignRight {
		return fill + s
	}
	return s + fill
}

// visibleLength counts runes outside ANSI escape sequences
func visibleLength(s string) int {
	length := 0
	inEscape := false
	for _, r := range s {
		if r == '\033' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			length++
		}
	}
	return length
}

// Foreground returns a FormatFunc painting the cell in fg
func Foreground(fg coloransi.ColorCode) FormatFunc {
	return func(s string) string {
		return coloransi.Foreground(fg, s)
	}
}
