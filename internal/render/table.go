package render

import (
	"fmt"
	"strings"
)

// tableClass is the class attribute of generated tables.
const tableClass = "table table-bordered table-hover"

// TableToHTML converts a pipe-delimited table to HTML. The first non-empty
// line is the header row, the second is a separator and is discarded, the
// rest are data rows. Cell text is emitted as-is.
func TableToHTML(raw string) (string, error) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return "", fmt.Errorf("%w: need header and separator line, got %d line(s)", ErrMalformedTable, len(lines))
	}

	var b strings.Builder
	b.WriteString(`<table class="` + tableClass + `">` + "\n")

	b.WriteString("<thead><tr>")
	writeCells(&b, "th", splitRow(lines[0]))
	b.WriteString("</tr>\n</thead>\n")

	b.WriteString("<tbody>")
	for _, line := range lines[2:] {
		b.WriteString("<tr>")
		writeCells(&b, "td", splitRow(line))
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n")

	b.WriteString("</table>")
	return b.String(), nil
}

// splitRow strips outer pipes and splits the row into trimmed cells.
func splitRow(line string) []string {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func writeCells(b *strings.Builder, tag string, cells []string) {
	for _, c := range cells {
		b.WriteString("<" + tag + ">" + c + "</" + tag + ">\n")
	}
}
