package ocr

import (
	"image"
	"image/color"
	"testing"
)

func TestPreprocessScalesSmallRegions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	out := Preprocess(img)
	if got := out.Bounds().Dx(); got != 200 {
		t.Errorf("width = %d, want 200", got)
	}
	if got := out.Bounds().Dy(); got != 100 {
		t.Errorf("height = %d, want 100", got)
	}
}

func TestPreprocessScalesLargeRegions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 100))
	out := Preprocess(img)
	if got := out.Bounds().Dx(); got != 1200 {
		t.Errorf("width = %d, want 1200", got)
	}
	if got := out.Bounds().Dy(); got != 150 {
		t.Errorf("height = %d, want 150", got)
	}
}

func TestPreprocessScaleBoundary(t *testing.T) {
	cases := []struct {
		width, height int
		wantWidth     int
	}{
		{599, 100, 1198},
		{600, 100, 900},
	}
	for _, c := range cases {
		img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
		out := Preprocess(img)
		if got := out.Bounds().Dx(); got != c.wantWidth {
			t.Errorf("width %d: scaled width = %d, want %d", c.width, got, c.wantWidth)
		}
	}
}

func TestPreprocessStretchesContrast(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 40, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 40; x++ {
			v := uint8(100)
			if x >= 20 {
				v = 150
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	out := Preprocess(img)
	lo, hi := uint8(255), uint8(0)
	for _, p := range out.Pix {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if lo != 0 {
		t.Errorf("min luminance = %d, want 0", lo)
	}
	if hi != 255 {
		t.Errorf("max luminance = %d, want 255", hi)
	}
}

func TestPreprocessLeavesFlatImageFlat(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 30, 10))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	out := Preprocess(img)
	first := out.Pix[0]
	for i, p := range out.Pix {
		if p != first {
			t.Fatalf("pixel %d = %d, want uniform %d", i, p, first)
		}
	}
}
