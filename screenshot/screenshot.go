// Package screenshot captures screen regions. On Wayland sessions the
// desktop portal does the actual shot and the region is cropped out of
// it; elsewhere the displays are read directly.
package screenshot

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
)

// Region is a rectangle in virtual-screen coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Validate rejects regions without area.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width, r.Height)
	}
	return nil
}

// Bounds returns the region as an image rectangle.
func (r Region) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// Capturer takes screenshots of regions or the whole virtual screen.
type Capturer interface {
	CaptureRegion(ctx context.Context, region Region) (*image.RGBA, error)
	CaptureScreen(ctx context.Context) (*image.RGBA, error)
}

// NewCapturer picks the portal on Wayland sessions and falls back to
// direct capture elsewhere or when the portal is unreachable.
func NewCapturer() Capturer {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		portal, err := NewPortal()
		if err == nil {
			return portal
		}
		log.Printf("Warning: screenshot portal unavailable, using native capture: %v", err)
	}
	return Native{}
}

// Crop cuts a region out of a full-screen capture. The region is
// clamped to the image bounds; img's origin is taken as the virtual
// screen origin.
func Crop(img *image.RGBA, region Region) (*image.RGBA, error) {
	bounds := img.Bounds()
	r := region.Bounds().Intersect(bounds)
	if r.Empty() {
		return nil, fmt.Errorf("region %s outside capture bounds %v", region, bounds)
	}

	cropped := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	bytesPerRow := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		srcStart := (r.Min.Y-bounds.Min.Y+y)*img.Stride + (r.Min.X-bounds.Min.X)*4
		dstStart := y * cropped.Stride
		copy(cropped.Pix[dstStart:dstStart+bytesPerRow], img.Pix[srcStart:srcStart+bytesPerRow])
	}
	return cropped, nil
}
