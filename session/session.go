// Package session runs one capture: select a region, shoot it,
// recognize the text, and deliver the result to a target.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"time"

	"screen-ocr-code/clipboard"
	"screen-ocr-code/screenshot"
	"screen-ocr-code/singleinstance"
)

var ErrSelectionCancelled = errors.New("selection cancelled")

type RegionSelectorFunc func(ctx context.Context) (screenshot.Region, bool, error)

type CaptureFunc func(ctx context.Context, region screenshot.Region) (*image.RGBA, error)

type RecognizeFunc func(ctx context.Context, img image.Image) (string, error)

// ResultTarget receives the outcome of a session.
type ResultTarget interface {
	OnSuccess(text string) error
	OnFailure(err error) error
}

// Notifier surfaces the outcome to the user. Cancelled selections are
// not surfaced.
type Notifier interface {
	Success(text string)
	Failure(err error)
}

type Options struct {
	// Deadline bounds capture through delivery; selection time is not
	// counted against it. Defaults to 20s.
	Deadline     time.Duration
	SelectRegion RegionSelectorFunc
	Capture      CaptureFunc
	Recognize    RecognizeFunc
	Target       ResultTarget
	Notifier     Notifier
}

type Result struct {
	Text string
}

func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.SelectRegion == nil {
		return Result{}, errors.New("SelectRegion is required")
	}
	if opts.Capture == nil {
		return Result{}, errors.New("Capture is required")
	}
	if opts.Recognize == nil {
		return Result{}, errors.New("Recognize is required")
	}
	if opts.Target == nil {
		return Result{}, errors.New("Target is required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}

	region, cancelled, err := opts.SelectRegion(ctx)
	if err != nil {
		_ = opts.Target.OnFailure(err)
		notifier.Failure(err)
		return Result{}, err
	}
	if cancelled {
		_ = opts.Target.OnFailure(ErrSelectionCancelled)
		return Result{}, ErrSelectionCancelled
	}
	log.Printf("session: region selected: %s", region)

	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = 20 * time.Second
	}
	jobCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	img, err := opts.Capture(jobCtx, region)
	if err != nil {
		err = fmt.Errorf("capture: %w", err)
		_ = opts.Target.OnFailure(err)
		notifier.Failure(err)
		return Result{}, err
	}

	text, err := opts.Recognize(jobCtx, img)
	if err != nil {
		err = fmt.Errorf("recognize: %w", err)
		_ = opts.Target.OnFailure(err)
		notifier.Failure(err)
		return Result{}, err
	}
	log.Printf("session: recognized %d chars", len(text))

	if err := opts.Target.OnSuccess(text); err != nil {
		_ = opts.Target.OnFailure(err)
		notifier.Failure(err)
		return Result{}, err
	}
	notifier.Success(text)
	return Result{Text: text}, nil
}

type noopNotifier struct{}

func (noopNotifier) Success(string) {}
func (noopNotifier) Failure(error)  {}

// ClipboardTarget copies the text to the system clipboard.
type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(text string) error {
	return clipboard.Write(text)
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

// StdoutTarget writes the text to a writer, os.Stdout by default.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(text string) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprint(w, text)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

// DelegatedTarget answers a control-socket connection: stdout mode
// returns the text over the wire, clipboard mode writes the daemon's
// clipboard and returns an empty payload.
type DelegatedTarget struct {
	Conn           singleinstance.Conn
	OutputToStdout bool
}

func (t DelegatedTarget) OnSuccess(text string) error {
	if t.Conn == nil {
		return errors.New("delegated target missing connection")
	}
	if t.OutputToStdout {
		return t.Conn.RespondSuccess(text)
	}
	if err := clipboard.Write(text); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return t.Conn.RespondSuccess("")
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	return t.Conn.RespondError(err.Error())
}
