package screenshot

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Native reads pixels straight from the displays. Works on X11 and on
// compositors that still expose screen capture to clients.
type Native struct{}

// CaptureScreen captures the union of all active displays.
func (Native) CaptureScreen(ctx context.Context) (*image.RGBA, error) {
	bounds, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("native capture of screen: %w", err)
	}
	return img, nil
}

// CaptureRegion captures just the requested rectangle.
func (Native) CaptureRegion(ctx context.Context, region Region) (*image.RGBA, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(region.Bounds())
	if err != nil {
		return nil, fmt.Errorf("native capture of %s: %w", region, err)
	}
	return img, nil
}

// VirtualBounds returns the union of all active display bounds.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}
