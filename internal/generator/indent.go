package generator

import "strings"

const tabSize = 4

// indentLines aligns tab-separated columns across a block of lines.
// Each embedded tab marks a column break; every column is padded with
// tabs out to the first tab stop past the widest cell in that column,
// so the next column starts at the same screen position on every line.
func indentLines(lines []string) []string {
	rows := make([][]string, len(lines))
	numColumns := 0
	for i, line := range lines {
		rows[i] = strings.Split(line, "\t")
		if len(rows[i]) > numColumns {
			numColumns = len(rows[i])
		}
	}

	columnLengths := make([]int, numColumns)
	for _, row := range rows {
		for col, cell := range row {
			if len(cell) > columnLengths[col] {
				columnLengths[col] = len(cell)
			}
		}
	}

	out := make([]string, 0, len(lines))
	for _, row := range rows {
		var b strings.Builder
		for col, cell := range row {
			b.WriteString(cell)
			if col == len(row)-1 {
				break
			}
			width := len(cell)
			for width < columnLengths[col]+1 {
				b.WriteByte('\t')
				width += tabSize - width%tabSize
			}
		}
		out = append(out, b.String())
	}
	return out
}
