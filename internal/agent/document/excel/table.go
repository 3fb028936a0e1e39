package excel

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const missing = "NaN"

// RenderTable lays out rows as plain text: the first row is the header, cells
// are right-aligned per column, columns are separated by one space and there is
// no index column. Short rows are padded with NaN; blank header cells become
// "Unnamed: <col>".
func RenderTable(rows [][]string) string {
	if len(rows) == 0 {
		return "Empty DataFrame\nColumns: []\nIndex: []"
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}

	header := make([]string, cols)
	for i := range header {
		if i < len(rows[0]) && strings.TrimSpace(rows[0][i]) != "" {
			header[i] = rows[0][i]
		} else {
			header[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	data := rows[1:]
	if len(data) == 0 {
		return fmt.Sprintf("Empty DataFrame\nColumns: [%s]\nIndex: []", strings.Join(header, ", "))
	}

	cells := make([][]string, len(data))
	for r, row := range data {
		cells[r] = make([]string, cols)
		for c := 0; c < cols; c++ {
			if c < len(row) && row[c] != "" {
				cells[r][c] = row[c]
			} else {
				cells[r][c] = missing
			}
		}
	}

	widths := make([]int, cols)
	for c, h := range header {
		widths[c] = utf8.RuneCountInString(h)
	}
	for _, row := range cells {
		for c, v := range row {
			widths[c] = max(widths[c], utf8.RuneCountInString(v))
		}
	}

	var b strings.Builder
	writeLine(&b, header, widths)
	for _, row := range cells {
		b.WriteByte('\n')
		writeLine(&b, row, widths)
	}
	return b.String()
}

func writeLine(b *strings.Builder, values []string, widths []int) {
	for c, v := range values {
		if c > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.Repeat(" ", widths[c]-utf8.RuneCountInString(v)))
		b.WriteString(v)
	}
}
