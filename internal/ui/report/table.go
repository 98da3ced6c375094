// Package report turns resolution results into the pipe-delimited text table
// written to the report file, and into the short terminal summary.
package report

import (
	"strings"

	"uncheckedscan/internal/engine/audit"

	"github.com/mattn/go-runewidth"
)

const cellPadding = 2

var Headers = [3]string{"File Path", "Unchecked Function", "Safe Function"}

// Table is the assembled report: fixed headers, one row per result and the
// display width of each column.
type Table struct {
	Headers [3]string
	Rows    [][3]string
	Widths  [3]int
}

// Assemble converts results into rows in the order given and computes column
// widths as the widest cell (header included) plus padding. Callers pass
// audit.Result.Results, which is already sorted.
func Assemble(results []audit.ResolutionResult) Table {
	t := Table{Headers: Headers, Rows: make([][3]string, 0, len(results))}
	for _, r := range results {
		t.Rows = append(t.Rows, [3]string{r.Path, r.Name, r.CounterpartOrAbsent()})
	}

	for i, h := range t.Headers {
		t.Widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > t.Widths[i] {
				t.Widths[i] = w
			}
		}
	}
	for i := range t.Widths {
		t.Widths[i] += cellPadding
	}
	return t
}

// Render writes the header row, a separator with one dash per column width
// and one line per row. Every line ends with a newline.
func (t Table) Render() string {
	var b strings.Builder
	t.writeRow(&b, t.Headers)

	b.WriteByte('|')
	for _, w := range t.Widths {
		b.WriteString(strings.Repeat("-", w))
		b.WriteByte('|')
	}
	b.WriteByte('\n')

	for _, row := range t.Rows {
		t.writeRow(&b, row)
	}
	return b.String()
}

func (t Table) writeRow(b *strings.Builder, cells [3]string) {
	b.WriteByte('|')
	for i, cell := range cells {
		b.WriteByte(' ')
		b.WriteString(runewidth.FillRight(cell, t.Widths[i]))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
}
