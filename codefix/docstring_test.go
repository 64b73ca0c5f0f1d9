package codefix

import (
	"strings"
	"testing"
)

func TestNormalizeDocstrings_MatchesNextCodeIndent(t *testing.T) {
	in := `"""Runs the job."""` + "\n    def run():"
	want := `    """Runs the job."""` + "\n    def run():"
	if got := NormalizeDocstrings(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestNormalizeDocstrings_LooksPastBlankLine(t *testing.T) {
	in := `"""Runs the job."""` + "\n\n    x = 1"
	want := `    """Runs the job."""` + "\n\n    x = 1"
	if got := NormalizeDocstrings(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestNormalizeDocstrings_WindowIsTwoLines(t *testing.T) {
	in := `"""Runs the job."""` + "\n\n\n    x = 1"
	if got := NormalizeDocstrings(in); got != in {
		t.Errorf("Expected docstring untouched beyond the look-ahead window, got %q", got)
	}
}

func TestNormalizeDocstrings_ZeroIndentUntouched(t *testing.T) {
	in := `  """Top level."""` + "\nx = 1"
	if got := NormalizeDocstrings(in); got != in {
		t.Errorf("Expected docstring untouched at column zero code, got %q", got)
	}
}

func TestNormalizeDocstrings_SkipsDocstringNeighbors(t *testing.T) {
	in := strings.Join([]string{
		`"""One."""`,
		`"""Two."""`,
		"    y = 2",
	}, "\n")
	want := strings.Join([]string{
		`    """One."""`,
		`    """Two."""`,
		"    y = 2",
	}, "\n")
	if got := NormalizeDocstrings(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestNormalizeDocstrings_PlainTextUntouched(t *testing.T) {
	in := "x = 1\n    y = 2"
	if got := NormalizeDocstrings(in); got != in {
		t.Errorf("Expected plain text untouched, got %q", got)
	}
}
