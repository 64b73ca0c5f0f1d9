package codefix

import "testing"

func TestClean_Empty(t *testing.T) {
	if got := Clean(""); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestClean_TrailingWhitespace(t *testing.T) {
	in := "x = 1   \ny = 2\t"
	want := "x = 1\ny = 2"
	if got := Clean(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestClean_CollapsesInnerSpacesKeepsIndent(t *testing.T) {
	in := "    x  =   1"
	want := "    x = 1"
	if got := Clean(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestClean_SqueezesBlankRuns(t *testing.T) {
	in := "a = 1\n\n\n\nb = 2"
	want := "a = 1\n\nb = 2"
	if got := Clean(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
