// Package ocr recognizes text in captured images with Tesseract and
// exposes the positioned boxes as layout fragments.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"screen-ocr-code/layout"
)

// Config holds recognition settings.
type Config struct {
	// Languages passed to Tesseract (default: eng).
	Languages []string

	// DPI sets user_defined_dpi when positive.
	DPI int

	// WordBoxes switches from text-line boxes to word boxes.
	WordBoxes bool

	// MinConfidence drops fragments below this confidence in [0,1].
	// Zero keeps everything.
	MinConfidence float64

	// Preprocess runs the upscale/contrast pipeline before recognition.
	Preprocess bool
}

// Result is one recognition run: the fragments plus the dimensions of
// the image they were recognized in.
type Result struct {
	Fragments      []layout.Fragment
	Width          int
	Height         int
	MeanConfidence float64
}

// Engine runs Tesseract with a fresh client per call.
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// New constructs an engine, filling config defaults.
func New(cfg Config) *Engine {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

// Recognize runs OCR over the image and returns the positioned
// fragments. The context is checked between the expensive stages; the
// Tesseract call itself is not interruptible.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("ocr: nil image")
	}
	if e.cfg.Preprocess {
		img = Preprocess(img)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	saveDebugImage(buf.Bytes(), img.Bounds())

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.Languages...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("set page seg mode: %w", err)
	}
	if e.cfg.DPI > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.cfg.DPI)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	level := gosseract.RIL_TEXTLINE
	if e.cfg.WordBoxes {
		level = gosseract.RIL_WORD
	}
	boxes, err := client.GetBoundingBoxes(level)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	fragments, mean := fragmentsFromBoxes(boxes, e.cfg.MinConfidence)
	bounds := img.Bounds()
	return &Result{
		Fragments:      fragments,
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		MeanConfidence: mean,
	}, nil
}

// fragmentsFromBoxes converts Tesseract boxes to fragments, dropping
// empty text and anything below the confidence floor. Confidence comes
// back as a percentage and is normalized to [0,1].
func fragmentsFromBoxes(boxes []gosseract.BoundingBox, minConfidence float64) ([]layout.Fragment, float64) {
	var fragments []layout.Fragment
	var sum float64
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		conf := b.Confidence / 100.0
		if minConfidence > 0 && conf < minConfidence {
			continue
		}
		sum += conf
		fragments = append(fragments, layout.Fragment{
			Text:       text,
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			Confidence: conf,
		})
	}
	if len(fragments) == 0 {
		return nil, 0
	}
	return fragments, sum / float64(len(fragments))
}

// saveDebugImage dumps the exact image handed to Tesseract when
// OCR_DEBUG_SAVE_IMAGES=true.
func saveDebugImage(data []byte, bounds image.Rectangle) {
	if os.Getenv("OCR_DEBUG_SAVE_IMAGES") != "true" {
		return
	}
	name := fmt.Sprintf("debug_ocr_input_%dx%d.png", bounds.Dx(), bounds.Dy())
	if err := os.WriteFile(name, data, 0600); err != nil {
		log.Printf("Warning: Could not save debug image: %v", err)
		return
	}
	log.Printf("DEBUG: Saved OCR input to %s (size: %d bytes)", name, len(data))
}
