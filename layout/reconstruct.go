// Package layout reconstructs source-like text from positioned OCR
// fragments: it groups fragments into visual lines by vertical proximity,
// infers leading indentation from horizontal offsets, and runs the
// configured correction rules over the result.
package layout

import (
	"math"
	"sort"
	"strings"

	"screen-ocr-code/codefix"
)

// Config holds the reconstruction parameters.
type Config struct {
	// MinTolerance is the floor for the vertical grouping tolerance in
	// pixels (default 10).
	MinTolerance int

	// LineHeightRatio estimates the text line height as this fraction of
	// the image height; the grouping tolerance is half the estimate
	// (default 0.05).
	LineHeightRatio float64

	// IndentUnit is the number of spaces per indent level (default 4).
	IndentUnit int

	// MaxIndentLevel caps the inferred indent level (default 5).
	MaxIndentLevel int

	// Rules is the ordered correction chain applied to the assembled
	// text. An empty slice disables correction.
	Rules []codefix.Rule

	// NormalizeDocstrings re-indents triple-quote lines to match the
	// following code line (default true).
	NormalizeDocstrings bool
}

// DefaultConfig returns the standard reconstruction configuration with
// the full Python correction chain enabled.
func DefaultConfig() Config {
	return Config{
		MinTolerance:        10,
		LineHeightRatio:     0.05,
		IndentUnit:          4,
		MaxIndentLevel:      5,
		Rules:               codefix.Default(),
		NormalizeDocstrings: true,
	}
}

// Reconstructor turns recognized fragments into an indented multi-line
// string approximating the layout of the source image.
type Reconstructor struct {
	config Config
}

// NewReconstructor creates a reconstructor with DefaultConfig.
func NewReconstructor() *Reconstructor {
	return &Reconstructor{config: DefaultConfig()}
}

// NewReconstructorWithConfig creates a reconstructor with a custom
// configuration.
func NewReconstructorWithConfig(config Config) *Reconstructor {
	return &Reconstructor{config: config}
}

// Reconstruct produces the final text for fragments recognized in an
// image of the given pixel dimensions. It always returns a string: an
// empty fragment list yields "". The input slice is not modified, and
// the result is a pure function of the fragment set; input order does
// not matter.
func (r *Reconstructor) Reconstruct(fragments []Fragment, imageWidth, imageHeight int) string {
	if len(fragments) == 0 {
		return ""
	}

	// Step 1: group fragments into visual lines by Y proximity.
	groups := r.groupFragments(fragments, imageHeight)

	// Step 2: pick the indentation baseline from the per-line minima.
	baseline := r.baseline(groups)

	// Step 3: render each line with its quantized indentation.
	charWidth := charWidthFor(imageWidth)
	lines := make([]string, len(groups))
	for i, g := range groups {
		offset := g.MinX - baseline
		if offset < 0 || float64(offset) > float64(imageWidth)*0.5 {
			offset = 0
		}
		level := r.indentLevel(offset, charWidth)
		lines[i] = strings.Repeat(" ", level*r.config.IndentUnit) + g.Text()
	}
	text := strings.Join(lines, "\n")

	// Step 4: correction chain, docstring re-indent, whitespace cleanup.
	text = codefix.Apply(text, r.config.Rules)
	if r.config.NormalizeDocstrings {
		text = codefix.NormalizeDocstrings(text)
	}
	return codefix.Clean(text)
}

// groupFragments partitions fragments into lines. Fragments are sorted
// by (Y, X, Text) and merged greedily: a fragment joins the current
// group while its Y stays within tolerance of the group's running mean,
// otherwise it starts a new group. Groups are never merged afterwards,
// so the partition depends only on the fragment set.
func (r *Reconstructor) groupFragments(fragments []Fragment, imageHeight int) []LineGroup {
	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Text < sorted[j].Text
	})

	tolerance := r.tolerance(imageHeight)

	var groups []LineGroup
	var current []Fragment
	sumY := 0
	for _, f := range sorted {
		if len(current) > 0 {
			meanY := float64(sumY) / float64(len(current))
			if float64(f.Y)-meanY <= float64(tolerance) {
				current = append(current, f)
				sumY += f.Y
				continue
			}
			groups = append(groups, newLineGroup(current))
		}
		current = []Fragment{f}
		sumY = f.Y
	}
	if len(current) > 0 {
		groups = append(groups, newLineGroup(current))
	}
	return groups
}

// tolerance is half the estimated line height, floored at MinTolerance.
func (r *Reconstructor) tolerance(imageHeight int) int {
	estimated := int(float64(imageHeight) * r.config.LineHeightRatio)
	if estimated < r.config.MinTolerance {
		estimated = r.config.MinTolerance
	}
	tolerance := estimated / 2
	if tolerance < r.config.MinTolerance {
		tolerance = r.config.MinTolerance
	}
	return tolerance
}

// baseline returns the reference X treated as "no indentation": the
// smallest per-line minimum, or the second smallest when the gap below
// it dwarfs the next gap (one stray leftmost detection must not skew
// every line).
func (r *Reconstructor) baseline(groups []LineGroup) int {
	xs := make([]int, len(groups))
	for i, g := range groups {
		xs[i] = g.MinX
	}
	sort.Ints(xs)

	base := xs[0]
	if len(xs) > 3 {
		gap := xs[1] - xs[0]
		nextGap := xs[2] - xs[1]
		if gap > nextGap*2 {
			base = xs[1]
		}
	}
	return base
}

// indentLevel quantizes a pixel offset to an indent level: offset to
// character columns, columns to units of IndentUnit, clamped to
// [0, MaxIndentLevel]. Ties round to even in both steps.
func (r *Reconstructor) indentLevel(offset, charWidth int) int {
	columns := math.RoundToEven(float64(offset) / float64(charWidth))
	level := int(math.RoundToEven(columns / float64(r.config.IndentUnit)))
	if level < 0 {
		level = 0
	}
	if level > r.config.MaxIndentLevel {
		level = r.config.MaxIndentLevel
	}
	return level
}

// charWidthFor estimates the character cell width in pixels from the
// image width: tighter estimates for small regions, typical monospace
// width for large ones.
func charWidthFor(imageWidth int) int {
	switch {
	case imageWidth < 300:
		return 6
	case imageWidth < 600:
		return 8
	default:
		return 10
	}
}
