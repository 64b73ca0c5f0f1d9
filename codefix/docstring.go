package codefix

import "strings"

const tripleQuote = `"""`

// NormalizeDocstrings re-indents every line containing a triple-quote
// marker to match the next code line. The search looks ahead at most two
// lines for a non-blank line without a triple quote; if that line is
// indented, the docstring line is re-emitted at the same indentation.
// Lines whose following code sits at column zero keep their original
// indentation.
func NormalizeDocstrings(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		if !strings.Contains(line, tripleQuote) {
			out = append(out, line)
			continue
		}

		codeIndent := -1
		for j := i + 1; j < len(lines) && j < i+3; j++ {
			trimmed := strings.TrimSpace(lines[j])
			if trimmed == "" || strings.Contains(trimmed, tripleQuote) {
				continue
			}
			codeIndent = leadingWhitespace(lines[j])
			break
		}

		if codeIndent > 0 {
			out = append(out, strings.Repeat(" ", codeIndent)+strings.TrimSpace(line))
		} else {
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}
