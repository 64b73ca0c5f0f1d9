// Package codefix repairs common OCR misreadings of Python source. It is
// a best-effort textual denoiser: an ordered chain of pattern rewrites
// with no parsing and no validation, so a rule can fix a genuine error or
// corrupt a coincidentally similar substring. Rules never fail; an
// unmatched pattern is a no-op.
package codefix

import (
	"regexp"
	"strings"
)

// Context gives a rule visibility into the surrounding lines. Lines holds
// the text as it was split before the chain ran; preconditions that look
// at neighbors therefore see pre-correction content.
type Context struct {
	Lines []string
	Index int
}

// Next returns the following line, if any.
func (c Context) Next() (string, bool) {
	if c.Index+1 >= len(c.Lines) {
		return "", false
	}
	return c.Lines[c.Index+1], true
}

// Rule is one rewrite in the correction chain. Pattern/Replace perform a
// regexp substitution; Rewrite, when set, replaces the whole line
// instead. When, if set, gates the rule against the line's current text
// and its context.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
	Rewrite func(line string, ctx Context) string
	When    func(line string, ctx Context) bool
}

func (r Rule) apply(line string, ctx Context) string {
	if r.When != nil && !r.When(line, ctx) {
		return line
	}
	if r.Rewrite != nil {
		return r.Rewrite(line, ctx)
	}
	return r.Pattern.ReplaceAllString(line, r.Replace)
}

// Apply runs the rules, in order, over every line of text and returns the
// corrected text. Rules on one line do not see corrections already made
// to other lines.
func Apply(text string, rules []Rule) string {
	if len(rules) == 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		ctx := Context{Lines: lines, Index: i}
		for _, r := range rules {
			line = r.apply(line, ctx)
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}

// Markers that make a line look like code rather than prose.
var codeMarkers = []string{
	"def ", "class ", "=", "(", ")", "[", "]", "{", "}",
	"if ", "for ", "while ", "return ",
}

// Markers checked on the line after a docstring candidate.
var nextLineMarkers = []string{
	"def ", "class ", "=", "(", ")", "self.", "return ", "for ", "if ",
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func leadingWhitespace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// isDocstringCandidate reports whether a line of prose sandwiched against
// code should be promoted to a docstring: short unquoted text that is not
// an import and not code-shaped, directly above a code-shaped line.
func isDocstringCandidate(line string, ctx Context) bool {
	stripped := strings.TrimSpace(line)
	if len(stripped) <= 5 || len(stripped) >= 100 {
		return false
	}
	if strings.Contains(line, `"`) {
		return false
	}
	lower := strings.ToLower(stripped)
	if strings.HasPrefix(lower, "import ") || strings.HasPrefix(lower, "from ") {
		return false
	}
	if containsAny(stripped, codeMarkers) {
		return false
	}
	next, ok := ctx.Next()
	if !ok {
		return false
	}
	return containsAny(strings.TrimSpace(next), nextLineMarkers)
}

// Default returns the standard correction chain, in application order.
// Callers may trim, extend, or reorder the slice freely; the chain only
// reads lines, so disabling any rule cannot break the others.
func Default() []Rule {
	return []Rule{
		{
			Name: "promote-docstring",
			When: isDocstringCandidate,
			Rewrite: func(line string, _ Context) string {
				stripped := strings.TrimSpace(line)
				return strings.Repeat(" ", leadingWhitespace(line)) + `"""` + stripped + `"""`
			},
		},

		// Triple-quote artifacts.
		{Name: "dot-before-triple", Pattern: regexp.MustCompile(`\."""`), Replace: `"""`},
		{Name: "triple-dot-quote", Pattern: regexp.MustCompile(`"""\."`), Replace: `"""`},
		{Name: "leading-dot-quote", Pattern: regexp.MustCompile(`^\s*\.\s*"`), Replace: `"`},
		{Name: "double-to-triple", Pattern: regexp.MustCompile(`""([A-Za-z])`), Replace: `"""${1}`},
		{Name: "trailing-triple-run", Pattern: regexp.MustCompile(`([a-z])(""")+$`), Replace: `${1}"""`},
		{Name: "quad-quote", Pattern: regexp.MustCompile(`(^|[^"])("""")+`), Replace: `${1}"""`},
		{Name: "double-quote-dot", Pattern: regexp.MustCompile(`""\.`), Replace: `"""`},

		// Keywords fused with the module name.
		{Name: "import-space", Pattern: regexp.MustCompile(`(?i)(\bimport)([a-z])`), Replace: `${1} ${2}`},
		{Name: "from-space", Pattern: regexp.MustCompile(`(?i)(\bfrom)([a-z])`), Replace: `${1} ${2}`},

		// A method name whose halves OCR likes to split. Skipped inside
		// docstring lines so prose stays prose.
		{Name: "find-screenshot-tool", When: notDocstring, Pattern: regexp.MustCompile(`_find\s+screenshot\s+_\s*tool`), Replace: `_find_screenshot_tool`},
		{Name: "find-screenshot-tool-call", When: notDocstring, Pattern: regexp.MustCompile(`_find\s+screenshot\s+tool(\()`), Replace: `_find_screenshot_tool${1}`},
		{Name: "find-screenshot-eol", When: notDocstring, Pattern: regexp.MustCompile(`_find\s+screenshot\s*$`), Replace: `_find_screenshot`},
		{Name: "self-find-screenshot", When: notDocstring, Pattern: regexp.MustCompile(`self\.\s*_?\s*find\s+screenshot`), Replace: `self._find_screenshot`},
		{Name: "self-find-gap", When: notDocstring, Pattern: regexp.MustCompile(`self\.\s+f(ind)`), Replace: `self._f${1}`},
		{Name: "bare-find-screenshot", When: notDocstring, Pattern: regexp.MustCompile(`\b_find\s+screenshot`), Replace: `_find_screenshot`},

		// Return-type arrow swallowed by OCR.
		{Name: "arrow-after-paren", Pattern: regexp.MustCompile(`\)\s+None\s*:`), Replace: `) -> None:`},
		{Name: "arrow-after-bracket", Pattern: regexp.MustCompile(`\]\s+None\s*:`), Replace: `] -> None:`},

		// Dunder spellings.
		{Name: "def-init", Pattern: regexp.MustCompile(`\bdef\s+__?init__?\s*\(`), Replace: `def __init__(`},
		{Name: "init-self", Pattern: regexp.MustCompile(`\binit\s+self\)`), Replace: `__init__(self)`},
		{Name: "init-call", Pattern: regexp.MustCompile(`\binit\s*\(`), Replace: `__init__(`},
		{Name: "init-bare", Pattern: regexp.MustCompile(`\binit(\s)`), Replace: `__init__${1}`},
		{Name: "dunder-name", Pattern: regexp.MustCompile(`\b_?name_?\s*==`), Replace: `__name__ ==`},
		{Name: "dunder-main", Pattern: regexp.MustCompile(`==\s*["']_?main_?["']`), Replace: `== "__main__"`},

		// typing module names lose their capital.
		{Name: "cap-optional", Pattern: regexp.MustCompile(`(?i)\boptional\b`), Replace: `Optional`},
		{Name: "cap-tuple", Pattern: regexp.MustCompile(`(?i)\btuple\b`), Replace: `Tuple`},
		{Name: "cap-list", Pattern: regexp.MustCompile(`(?i)\blist\b`), Replace: `List`},
		{Name: "cap-dict", Pattern: regexp.MustCompile(`(?i)\bdict\b`), Replace: `Dict`},
		{Name: "cap-set", Pattern: regexp.MustCompile(`(?i)\bset\b`), Replace: `Set`},

		// Class names start uppercase.
		{
			Name: "cap-class-name",
			Rewrite: func(line string, _ Context) string {
				return classNamePattern.ReplaceAllStringFunc(line, func(m string) string {
					return m[:len(m)-1] + strings.ToUpper(m[len(m)-1:])
				})
			},
		},
		{Name: "portal-screenshot", Pattern: regexp.MustCompile(`\bPortalscreenshot\b`), Replace: `PortalScreenshot`},
		{Name: "camel-screenshot", Pattern: regexp.MustCompile(`(?i)([A-Z][a-z]+)screenshot\b`), Replace: `${1}Screenshot`},

		// screenshot_tool identifier split into words.
		{Name: "screenshot-tool-call", Pattern: regexp.MustCompile(`screenshot\s+tool\s*\(\s*\)`), Replace: `screenshot_tool()`},
		{Name: "screenshot-tool-eol", Pattern: regexp.MustCompile(`screenshot\s+tool$`), Replace: `screenshot_tool`},
		{Name: "screenshot-tool-word", Pattern: regexp.MustCompile(`screenshot\s+tool([\s)])`), Replace: `screenshot_tool${1}`},

		// Assignment operators dropped between attribute and call.
		{Name: "assign-screenshot-tool", Pattern: regexp.MustCompile(`(self\.screenshot_tool)\s+self\._find\s+screenshot_tool\(\)`), Replace: `${1} = self._find_screenshot_tool()`},
		{Name: "assign-attr-call", Pattern: regexp.MustCompile(`(self\.\w+)\s+(self\._?\w+\()`), Replace: `${1} = ${2}`},

		{Name: "portal-docstring-order", Pattern: regexp.MustCompile(`Initialize\s+connection\.\s+portal`), Replace: `Initialize portal connection.`},

		// Accessor spacing.
		{Name: "self-dot-space", Pattern: regexp.MustCompile(`\bself\.\s+`), Replace: `self.`},
		{Name: "self-missing-dot", Pattern: regexp.MustCompile(`\bself([a-z_])`), Replace: `self.${1}`},
	}
}

var classNamePattern = regexp.MustCompile(`\bclass\s+([a-z])`)

func notDocstring(line string, _ Context) bool {
	return !strings.Contains(line, `"""`)
}
