package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"screen-ocr-code/clipboard"
	"screen-ocr-code/config"
	"screen-ocr-code/logutil"
	"screen-ocr-code/screenshot"
	"screen-ocr-code/selector"
	"screen-ocr-code/session"
	"screen-ocr-code/singleinstance"
)

type captureOptions struct {
	stdout bool
}

func newCaptureCmd() *cobra.Command {
	opts := &captureOptions{}
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Select a screen region, OCR it, and deliver the text",
		Long: `Select a screen region interactively, recognize its text, and copy the
reconstructed code to the clipboard (or print it with --stdout).

When a resident daemon is running the capture is delegated to it;
otherwise the whole pipeline runs in this process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd.Context(), *opts)
		},
	}
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print the recognized text to stdout instead of the clipboard")
	return cmd
}

func runCapture(ctx context.Context, opts captureOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logutil.Setup(cfg.EnableFileLogging)

	client := singleinstance.NewClient(portsFromConfig(cfg))
	delegated, text, err := client.Capture(ctx, opts.stdout)
	if delegated {
		if err != nil {
			// The sentinel does not survive the wire; match its message.
			if err.Error() == session.ErrSelectionCancelled.Error() {
				log.Printf("Selection cancelled")
				return nil
			}
			return fmt.Errorf("resident daemon: %w", err)
		}
		log.Printf("Delegated capture to resident daemon")
		if opts.stdout {
			fmt.Print(text)
		}
		return nil
	}

	log.Printf("No resident daemon detected, running standalone")
	return captureStandalone(ctx, cfg, opts)
}

func captureStandalone(ctx context.Context, cfg *config.Config, opts captureOptions) error {
	var target session.ResultTarget = session.StdoutTarget{}
	if !opts.stdout {
		if err := clipboard.Init(); err != nil {
			return fmt.Errorf("failed to initialize clipboard: %w", err)
		}
		target = session.ClipboardTarget{}
	}

	capturer := screenshot.NewCapturer()
	res, err := session.Execute(ctx, session.Options{
		Deadline:     time.Duration(cfg.OCRDeadlineSec) * time.Second,
		SelectRegion: selector.New().Select,
		Capture:      capturer.CaptureRegion,
		Recognize:    newRecognizer(cfg),
		Target:       target,
	})
	if errors.Is(err, session.ErrSelectionCancelled) {
		log.Printf("Selection cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("OCR extracted text (%d chars): %q", len(res.Text), sanitizeForLogging(res.Text))
	return nil
}
