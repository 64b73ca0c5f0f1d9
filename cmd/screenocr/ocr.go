package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"screen-ocr-code/config"
	"screen-ocr-code/layout"
	"screen-ocr-code/ocr"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type ocrOptions struct {
	filePath   string
	jsonOutput bool
	raw        bool
	verbose    bool
}

func newOCRCmd() *cobra.Command {
	opts := &ocrOptions{}
	cmd := &cobra.Command{
		Use:   "ocr",
		Short: "Run the recognition pipeline on a PNG file",
		Long: `Run OCR and layout reconstruction on an existing PNG instead of a live
screen capture. Use '-' as the file to read the image from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOCRFile(cmd.Context(), *opts)
		},
	}
	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Skip syntax repair and docstring re-indentation")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runOCRFile(ctx context.Context, opts ocrOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Configure logging before any other operations: stdout carries only
	// the OCR result.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		fmt.Fprintf(os.Stderr, "[verbose] Starting file OCR\n")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	imageData, err := readImageInput(opts.filePath, opts.verbose)
	if err != nil {
		return err
	}
	if err := validatePNG(imageData); err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] PNG validation passed\n")
	}

	img, err := png.Decode(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("failed to decode PNG: %w", err)
	}

	engine := ocr.New(ocrConfig(cfg))
	recon := layout.NewReconstructor()
	if opts.raw {
		rawCfg := layout.DefaultConfig()
		rawCfg.Rules = nil
		rawCfg.NormalizeDocstrings = false
		recon = layout.NewReconstructorWithConfig(rawCfg)
	}

	startTime := time.Now()
	res, err := engine.Recognize(ctx, img)
	elapsed := time.Since(startTime)
	if err != nil {
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "[verbose] OCR failed after %v: %v\n", elapsed, err)
		}
		return fmt.Errorf("OCR failed: %w", err)
	}
	text := recon.Reconstruct(res.Fragments, res.Width, res.Height)

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] OCR completed in %v, extracted %d characters (mean confidence %.2f)\n", elapsed, len(text), res.MeanConfidence)
	}

	return outputResult(text, opts.filePath, res, elapsed, opts.jsonOutput)
}

func readImageInput(filePath string, verbose bool) ([]byte, error) {
	var imageData []byte
	var err error

	if filePath == "-" {
		if verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Reading image from stdin\n")
		}
		imageData, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		if verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Reading image from file: %s\n", filePath)
		}
		imageData, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(imageData) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Read %d bytes\n", len(imageData))
	}
	return imageData, nil
}

func validatePNG(data []byte) error {
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

type OCRResult struct {
	Text       string         `json:"text"`
	Source     string         `json:"source"`
	Timestamp  string         `json:"timestamp"`
	Duration   float64        `json:"duration_seconds"`
	CharCount  int            `json:"character_count"`
	Confidence float64        `json:"mean_confidence"`
	Fragments  []fragmentJSON `json:"fragments"`
}

type fragmentJSON struct {
	Text       string  `json:"text"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Confidence float64 `json:"confidence"`
}

func outputResult(text, sourcePath string, res *ocr.Result, elapsed time.Duration, jsonOutput bool) error {
	if jsonOutput {
		fragments := make([]fragmentJSON, len(res.Fragments))
		for i, f := range res.Fragments {
			fragments[i] = fragmentJSON{Text: f.Text, X: f.X, Y: f.Y, Confidence: f.Confidence}
		}
		result := OCRResult{
			Text:       text,
			Source:     sourcePath,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Duration:   elapsed.Seconds(),
			CharCount:  len(text),
			Confidence: res.MeanConfidence,
			Fragments:  fragments,
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	} else {
		// Plain text output carries no trailing newline.
		fmt.Print(text)
	}

	return nil
}
