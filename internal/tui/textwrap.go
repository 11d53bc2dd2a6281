package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateToWidth shortens a line to the terminal width, appending an
// ellipsis when anything was cut. Width is display width, so CJK
// characters count as two columns.
func truncateToWidth(line string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(line) <= width {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}

// wrapText word-wraps text to the given width, preserving each line's
// leading indentation on its continuation lines and keeping interior runs
// of spaces intact.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{""}
	}

	var wrapped []string
	for _, line := range strings.Split(text, "\n") {
		wrapped = append(wrapped, wrapLine(line, width)...)
	}
	if wrapped == nil {
		wrapped = []string{""}
	}
	return wrapped
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}

	indent := leadingIndent(line)
	indentWidth := runewidth.StringWidth(indent)
	if indentWidth >= width {
		// Indentation alone overflows; fall back to hard wrapping.
		return hardWrap(line, width)
	}

	content := line[len(indent):]
	avail := width - indentWidth

	var result []string
	current := ""
	flushLine := func() {
		result = append(result, indent+strings.TrimRight(current, " "))
		current = ""
	}

	for _, token := range splitTokens(content) {
		tokenWidth := runewidth.StringWidth(token)
		currentWidth := runewidth.StringWidth(current)

		switch {
		case current == "" && tokenWidth <= avail:
			if isSpaces(token) {
				// Leading spaces at a wrap point are dropped; the indent
				// already carries the alignment.
				continue
			}
			current = token
		case currentWidth+tokenWidth <= avail:
			current += token
		case isSpaces(token):
			flushLine()
		case tokenWidth > avail:
			if current != "" {
				flushLine()
			}
			pieces := hardWrap(token, avail)
			for _, piece := range pieces[:len(pieces)-1] {
				result = append(result, indent+piece)
			}
			current = pieces[len(pieces)-1]
		default:
			flushLine()
			current = token
		}
	}
	if current != "" || len(result) == 0 {
		result = append(result, indent+strings.TrimRight(current, " "))
	}
	return result
}

// splitTokens splits a line into alternating runs of spaces and
// non-spaces so interior spacing survives wrapping.
func splitTokens(content string) []string {
	var tokens []string
	var current strings.Builder
	var inSpaces bool

	for _, r := range content {
		isSpace := r == ' '
		if current.Len() > 0 && isSpace != inSpaces {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		inSpaces = isSpace
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isSpaces(token string) bool {
	return strings.Trim(token, " ") == ""
}

func leadingIndent(line string) string {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return line[:i]
		}
	}
	return line
}

func hardWrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var pieces []string
	current := ""
	for _, r := range text {
		if runewidth.StringWidth(current)+runewidth.RuneWidth(r) > width {
			pieces = append(pieces, current)
			current = ""
		}
		current += string(r)
	}
	pieces = append(pieces, current)
	return pieces
}
