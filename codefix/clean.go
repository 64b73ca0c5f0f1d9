package codefix

import (
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(` +`)

// Clean tidies reconstructed text without disturbing its structure:
// trailing whitespace goes, runs of spaces inside a line collapse to one
// while leading indentation is preserved, and blank lines never stack
// more than one deep.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	cleaned := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) != "" {
			content := strings.TrimLeft(line, " \t")
			indent := len(line) - len(content)
			line = strings.Repeat(" ", indent) + spaceRun.ReplaceAllString(content, " ")
		}
		cleaned[i] = line
	}

	out := make([]string, 0, len(cleaned))
	prevBlank := false
	for _, line := range cleaned {
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, line)
		prevBlank = blank
	}

	return strings.Join(out, "\n")
}
