package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// cell is one table value. Color, when set, is applied after padding so
// escape codes never count toward the column width.
type cell struct {
	text  string
	color *color.Color
}

func plain(s string) cell { return cell{text: s} }

func colored(c *color.Color, s string) cell { return cell{text: s, color: c} }

// writeTable prints header and rows left-aligned with two spaces between
// columns, followed by a dashed rule under the header.
func writeTable(w io.Writer, header []string, rows [][]cell) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(c.text))
		}
	}

	rule := make([]cell, len(header))
	head := make([]cell, len(header))
	for i, h := range header {
		head[i] = plain(h)
		rule[i] = plain(strings.Repeat("-", utf8.RuneCountInString(h)))
	}

	writeRow(w, widths, head)
	writeRow(w, widths, rule)
	for _, row := range rows {
		writeRow(w, widths, row)
	}
}

func writeRow(w io.Writer, widths []int, row []cell) {
	var b strings.Builder
	for i, c := range row {
		text := c.text
		if i < len(row)-1 {
			text += strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c.text)+2)
		}
		if c.color != nil {
			// Color only the value, not the padding
			pad := text[len(c.text):]
			text = c.color.Sprint(c.text) + pad
		}
		b.WriteString(text)
	}
	fmt.Fprintln(w, b.String())
}
