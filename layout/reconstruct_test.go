package layout

import (
	"strings"
	"testing"
)

// makeFragment creates a test fragment with full confidence.
func makeFragment(text string, x, y int) Fragment {
	return Fragment{Text: text, X: x, Y: y, Confidence: 1.0}
}

func TestReconstruct_EmptyFragments(t *testing.T) {
	r := NewReconstructor()

	if got := r.Reconstruct(nil, 640, 480); got != "" {
		t.Errorf("Expected empty string for nil fragments, got %q", got)
	}
	if got := r.Reconstruct([]Fragment{}, 640, 480); got != "" {
		t.Errorf("Expected empty string for empty fragments, got %q", got)
	}
}

func TestReconstruct_SingleLineSortedByX(t *testing.T) {
	r := NewReconstructor()
	fragments := []Fragment{
		makeFragment("beta", 50, 20),
		makeFragment("alpha", 10, 22),
		makeFragment("gamma", 90, 18),
	}

	got := r.Reconstruct(fragments, 640, 100)
	if got != "alpha beta gamma" {
		t.Errorf("Expected 'alpha beta gamma', got %q", got)
	}
}

func TestReconstruct_WorkedExample(t *testing.T) {
	// Two code lines 20px apart vertically and 8px apart horizontally in
	// a 640x100 capture: the 8px offset quantizes to level 0, so the
	// second line is deliberately left unindented.
	r := NewReconstructor()
	fragments := []Fragment{
		makeFragment("def foo(self):", 40, 10),
		makeFragment("return 1", 48, 30),
	}

	got := r.Reconstruct(fragments, 640, 100)
	want := "def foo(self):\nreturn 1"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReconstruct_OrderIndependence(t *testing.T) {
	base := []Fragment{
		makeFragment("x = 1", 40, 12),
		makeFragment("y = 2", 40, 40),
		makeFragment("z = 3", 80, 70),
	}
	permutations := [][]Fragment{
		{base[0], base[1], base[2]},
		{base[2], base[0], base[1]},
		{base[1], base[2], base[0]},
		{base[2], base[1], base[0]},
	}

	r := NewReconstructor()
	want := r.Reconstruct(permutations[0], 640, 100)
	for i, p := range permutations[1:] {
		if got := r.Reconstruct(p, 640, 100); got != want {
			t.Errorf("Permutation %d produced %q, want %q", i+1, got, want)
		}
	}
}

func TestReconstruct_IndentedBlock(t *testing.T) {
	r := NewReconstructor()
	fragments := []Fragment{
		makeFragment("a = 1", 100, 10),
		makeFragment("b = 2", 100, 40),
		makeFragment("c = 3", 140, 70),
		makeFragment("d = 4", 180, 100),
	}

	got := r.Reconstruct(fragments, 640, 200)
	want := strings.Join([]string{
		"a = 1",
		"b = 2",
		"    c = 3",
		"        d = 4",
	}, "\n")
	if got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestReconstruct_BaselineIgnoresStrayLeftmost(t *testing.T) {
	// One stray detection far left of the real margin: with more than
	// three lines and a leading gap more than double the next one, the
	// second-smallest X becomes the baseline.
	r := NewReconstructor()
	fragments := []Fragment{
		makeFragment("stray", 5, 10),
		makeFragment("b = 2", 100, 40),
		makeFragment("c = 3", 140, 70),
		makeFragment("d = 4", 180, 100),
	}

	got := r.Reconstruct(fragments, 640, 200)
	want := strings.Join([]string{
		"stray",
		"b = 2",
		"    c = 3",
		"        d = 4",
	}, "\n")
	if got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestReconstruct_OffsetBeyondHalfWidthResets(t *testing.T) {
	r := NewReconstructor()
	fragments := []Fragment{
		makeFragment("left", 10, 10),
		makeFragment("far", 150, 40),
	}

	// 140px offset exceeds half of the 200px width: treated as a
	// misdetection and rendered unindented.
	got := r.Reconstruct(fragments, 200, 100)
	want := "left\nfar"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReconstruct_GroupsWithinTolerance(t *testing.T) {
	// Height 400 gives an estimated line height of 20 and a tolerance of
	// 10: Y 100/105/108 collapse into one line, Y 200 starts another.
	r := NewReconstructor()
	fragments := []Fragment{
		makeFragment("first", 10, 100),
		makeFragment("second", 80, 105),
		makeFragment("third", 160, 108),
		makeFragment("next", 10, 200),
	}

	got := r.Reconstruct(fragments, 640, 400)
	want := "first second third\nnext"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReconstruct_RulesDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = nil
	cfg.NormalizeDocstrings = false
	raw := NewReconstructorWithConfig(cfg)
	fixed := NewReconstructor()

	fragments := []Fragment{makeFragment("importsys", 0, 0)}

	if got := raw.Reconstruct(fragments, 640, 100); got != "importsys" {
		t.Errorf("Expected raw text untouched, got %q", got)
	}
	if got := fixed.Reconstruct(fragments, 640, 100); got != "import sys" {
		t.Errorf("Expected corrected import, got %q", got)
	}
}

func TestIndentLevel_Monotonic(t *testing.T) {
	r := NewReconstructor()
	prev := 0
	for offset := 0; offset <= 400; offset++ {
		level := r.indentLevel(offset, 10)
		if level < prev {
			t.Fatalf("Indent level decreased at offset %d: %d -> %d", offset, prev, level)
		}
		prev = level
	}
}

func TestIndentLevel_Clamped(t *testing.T) {
	r := NewReconstructor()
	for _, offset := range []int{0, 40, 400, 4000, 100000} {
		level := r.indentLevel(offset, 6)
		if level < 0 || level > 5 {
			t.Errorf("Indent level %d out of range for offset %d", level, offset)
		}
	}
	if got := r.indentLevel(100000, 10); got != 5 {
		t.Errorf("Expected clamp to 5, got %d", got)
	}
}

func TestIndentLevel_TiesRoundToEven(t *testing.T) {
	r := NewReconstructor()

	// 60px at 6px per column is 10 columns, 2.5 units: rounds to 2.
	if got := r.indentLevel(60, 6); got != 2 {
		t.Errorf("Expected level 2 for offset 60, got %d", got)
	}
	// 84px at 6px per column is 14 columns, 3.5 units: rounds to 4.
	if got := r.indentLevel(84, 6); got != 4 {
		t.Errorf("Expected level 4 for offset 84, got %d", got)
	}
}

func TestTolerance_Floor(t *testing.T) {
	r := NewReconstructor()
	cases := []struct {
		height int
		want   int
	}{
		{100, 10},
		{300, 10},
		{400, 10},
		{500, 12},
		{1000, 25},
	}
	for _, c := range cases {
		if got := r.tolerance(c.height); got != c.want {
			t.Errorf("tolerance(%d): expected %d, got %d", c.height, c.want, got)
		}
	}
}

func TestCharWidthBuckets(t *testing.T) {
	cases := []struct {
		width int
		want  int
	}{
		{100, 6},
		{299, 6},
		{300, 8},
		{599, 8},
		{600, 10},
		{1920, 10},
	}
	for _, c := range cases {
		if got := charWidthFor(c.width); got != c.want {
			t.Errorf("charWidthFor(%d): expected %d, got %d", c.width, c.want, got)
		}
	}
}

func TestLineGroup_Text(t *testing.T) {
	g := newLineGroup([]Fragment{
		makeFragment("world", 60, 10),
		makeFragment("hello", 10, 12),
	})
	if g.Text() != "hello world" {
		t.Errorf("Expected 'hello world', got %q", g.Text())
	}
	if g.MinX != 10 {
		t.Errorf("Expected MinX 10, got %d", g.MinX)
	}
}
