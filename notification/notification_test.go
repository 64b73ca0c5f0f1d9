package notification

import (
	"strings"
	"testing"
)

func TestPreviewShortTextUnchanged(t *testing.T) {
	if got := preview("def foo():"); got != "def foo():" {
		t.Errorf("preview = %q", got)
	}
}

func TestPreviewTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := preview(long)
	if len(got) != previewLimit+3 {
		t.Errorf("len = %d, want %d", len(got), previewLimit+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("preview should end with ellipsis, got %q", got[len(got)-10:])
	}
}
