package tui

import "strings"

const glyphRows = 5

var glyphs = map[rune][glyphRows]string{
	'0': {"███", "█ █", "█ █", "█ █", "███"},
	'1': {"  █", "  █", "  █", "  █", "  █"},
	'2': {"███", "  █", "███", "█  ", "███"},
	'3': {"███", "  █", "███", "  █", "███"},
	'4': {"█ █", "█ █", "███", "  █", "  █"},
	'5': {"███", "█  ", "███", "  █", "███"},
	'6': {"███", "█  ", "███", "█ █", "███"},
	'7': {"███", "  █", "  █", "  █", "  █"},
	'8': {"███", "█ █", "███", "█ █", "███"},
	'9': {"███", "█ █", "███", "  █", "███"},
	':': {" ", "█", " ", "█", " "},
}

// bigText renders digits and colons as block glyphs. Other runes are
// skipped.
func bigText(s string) string {
	var rows [glyphRows][]string
	for _, r := range s {
		g, ok := glyphs[r]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i] = append(rows[i], g[i])
		}
	}

	lines := make([]string, glyphRows)
	for i, parts := range rows {
		lines[i] = strings.Join(parts, " ")
	}
	return strings.Join(lines, "\n")
}

// bigTextWidth is the rendered width of bigText(s).
func bigTextWidth(s string) int {
	w := 0
	n := 0
	for _, r := range s {
		g, ok := glyphs[r]
		if !ok {
			continue
		}
		w += len([]rune(g[0]))
		n++
	}
	if n > 1 {
		w += n - 1
	}
	return w
}
