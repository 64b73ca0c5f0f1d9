package ocr

import (
	"image"

	"golang.org/x/image/draw"
)

// Preprocess prepares a capture for recognition: upscale with
// Catmull-Rom (2x below 600px wide, 1.5x otherwise), convert to
// grayscale, and stretch the contrast to the full range. Small
// screen regions carry too few pixels per glyph for Tesseract
// without the upscale.
func Preprocess(img image.Image) *image.Gray {
	bounds := img.Bounds()
	scale := 1.5
	if bounds.Dx() < 600 {
		scale = 2.0
	}
	w := int(float64(bounds.Dx()) * scale)
	h := int(float64(bounds.Dy()) * scale)

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)

	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, scaled.Bounds().Min, draw.Src)

	stretchContrast(gray)
	return gray
}

// stretchContrast maps the observed luminance range onto [0,255].
// A flat image is left alone.
func stretchContrast(gray *image.Gray) {
	lo, hi := uint8(255), uint8(0)
	for _, p := range gray.Pix {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi <= lo {
		return
	}
	scale := 255.0 / float64(hi-lo)
	for i, p := range gray.Pix {
		gray.Pix[i] = uint8(float64(p-lo)*scale + 0.5)
	}
}
