package layout

import (
	"sort"
	"strings"
)

// Fragment is one unit of recognized text: the string content plus the
// top-left pixel position of its bounding box in the recognized image.
// Confidence is in [0,1]. Fragments are immutable once produced by
// recognition; reconstruction only reads them.
type Fragment struct {
	Text       string
	X          int
	Y          int
	Confidence float64
}

// LineGroup is a set of fragments judged to lie on the same visual line.
// It exists only within a single reconstruction call.
type LineGroup struct {
	// Fragments are the member fragments, sorted left to right.
	Fragments []Fragment

	// MinX is the smallest X over the members, used for indentation.
	MinX int
}

func newLineGroup(fragments []Fragment) LineGroup {
	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].X < fragments[j].X
	})
	minX := fragments[0].X
	for _, f := range fragments[1:] {
		if f.X < minX {
			minX = f.X
		}
	}
	return LineGroup{Fragments: fragments, MinX: minX}
}

// Text joins the member texts with single spaces in left-to-right order.
func (g LineGroup) Text() string {
	parts := make([]string, len(g.Fragments))
	for i, f := range g.Fragments {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}
