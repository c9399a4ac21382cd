package dbpool

import "strings"

// Stringify renders a Rows matrix per fixed, driver-independent
// contract: a single scalar (one row, one column) is just the cell; a
// one-column multi-row result joins rows with "\n"; a multi-column result
// joins rows with "\n" and cells within a row with "\t".
func Stringify(rows Rows) string {
	if len(rows) == 0 {
		return ""
	}
	if len(rows) == 1 && len(rows[0]) == 1 {
		return rows[0][0]
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, "\t")
	}
	return strings.Join(lines, "\n")
}
