package main

import (
	"context"
	"image"
	"strings"

	"screen-ocr-code/config"
	"screen-ocr-code/layout"
	"screen-ocr-code/ocr"
	"screen-ocr-code/session"
	"screen-ocr-code/singleinstance"
)

// newRecognizer composes OCR and layout reconstruction into the
// session's recognize step.
func newRecognizer(cfg *config.Config) session.RecognizeFunc {
	engine := ocr.New(ocrConfig(cfg))
	recon := layout.NewReconstructor()
	return func(ctx context.Context, img image.Image) (string, error) {
		res, err := engine.Recognize(ctx, img)
		if err != nil {
			return "", err
		}
		return recon.Reconstruct(res.Fragments, res.Width, res.Height), nil
	}
}

func ocrConfig(cfg *config.Config) ocr.Config {
	return ocr.Config{
		Languages:     cfg.Languages,
		MinConfidence: cfg.MinConfidence,
		Preprocess:    cfg.Preprocess,
	}
}

func portsFromConfig(cfg *config.Config) singleinstance.Ports {
	return singleinstance.Ports{Base: cfg.PortBase, Range: cfg.PortRange}
}

// sanitizeForLogging bounds and escapes recognized text before it is
// written to the log.
func sanitizeForLogging(text string) string {
	const maxLogLength = 100
	truncated := false
	if len(text) > maxLogLength {
		text = text[:maxLogLength]
		truncated = true
	}
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			b.WriteString("\\n")
		case r == '\t':
			b.WriteString("\\t")
		case r < 32 || r == 127:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	if truncated {
		b.WriteString("...")
	}
	return b.String()
}
