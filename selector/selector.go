// Package selector lets the user drag out a screen region with slurp.
package selector

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"screen-ocr-code/screenshot"
)

// slurp prints "x,y widthxheight"; coordinates can go negative on
// multi-monitor layouts.
var regionPattern = regexp.MustCompile(`(-?\d+),(-?\d+) (\d+)x(\d+)`)

// RegionSelector yields one user-selected region. The boolean reports
// whether the user completed the selection.
type RegionSelector interface {
	Select(ctx context.Context) (screenshot.Region, bool, error)
}

// Selector spawns an interactive region-selection tool.
type Selector struct {
	command string
	args    []string
}

var _ RegionSelector = (*Selector)(nil)

// New returns a slurp-backed selector. -d dims everything outside the
// selection, -f pins the output format we parse.
func New() *Selector {
	return NewCommand("slurp", "-d", "-f", "%x,%y %wx%h")
}

// NewCommand uses a custom selection command. The command must print
// a region in "x,y widthxheight" form on stdout.
func NewCommand(command string, args ...string) *Selector {
	return &Selector{command: command, args: args}
}

// Select blocks until the user drags out a region or cancels. The
// boolean is false when the selection was cancelled.
func (s *Selector) Select(ctx context.Context) (screenshot.Region, bool, error) {
	cmd := exec.CommandContext(ctx, s.command, s.args...)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return screenshot.Region{}, false, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			// slurp exits 1 when the user presses Escape.
			return screenshot.Region{}, false, nil
		}
		return screenshot.Region{}, false, fmt.Errorf("run %s: %w", s.command, err)
	}

	region, err := ParseRegion(strings.TrimSpace(string(out)))
	if err != nil {
		return screenshot.Region{}, false, err
	}
	return region, true, nil
}

// ParseRegion parses "x,y widthxheight" into a region.
func ParseRegion(s string) (screenshot.Region, error) {
	match := regionPattern.FindStringSubmatch(s)
	if len(match) != 5 {
		return screenshot.Region{}, fmt.Errorf("unexpected selection output %q", s)
	}
	x, _ := strconv.Atoi(match[1])
	y, _ := strconv.Atoi(match[2])
	width, _ := strconv.Atoi(match[3])
	height, _ := strconv.Atoi(match[4])

	region := screenshot.Region{X: x, Y: y, Width: width, Height: height}
	if err := region.Validate(); err != nil {
		return screenshot.Region{}, err
	}
	return region, nil
}
