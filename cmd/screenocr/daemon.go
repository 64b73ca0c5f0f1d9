package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screen-ocr-code/clipboard"
	"screen-ocr-code/config"
	"screen-ocr-code/eventloop"
	"screen-ocr-code/logutil"
	"screen-ocr-code/screenshot"
	"screen-ocr-code/selector"
	"screen-ocr-code/singleinstance"
)

type daemonOptions struct {
	hotkey string
}

func newDaemonCmd() *cobra.Command {
	opts := &daemonOptions{}
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the resident capture daemon",
		Long: `Run the resident daemon: it binds a loopback control port, registers
the global hotkey, and serves delegated captures until stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(*opts)
		},
	}
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Hotkey combination (overrides HOTKEY from the environment)")
	cmd.AddCommand(newDaemonStatusCmd())
	cmd.AddCommand(newDaemonStopCmd())
	return cmd
}

func runDaemon(opts daemonOptions) error {
	cfg, err := config.LoadWithOptions(config.LoadOptions{HotkeyOverride: opts.hotkey})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logutil.Setup(cfg.EnableFileLogging)

	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	log.Printf("screen-ocr-code daemon starting")
	log.Printf("Hotkey: %s", cfg.Hotkey)
	log.Printf("OCR languages: %s", strings.Join(cfg.Languages, "+"))
	log.Printf("OCR deadline: %ds", cfg.OCRDeadlineSec)

	capturer := screenshot.NewCapturer()
	loop := eventloop.New(cfg, eventloop.Pipeline{
		SelectRegion: selector.New().Select,
		Capture:      capturer.CaptureRegion,
		Recognize:    newRecognizer(cfg),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Printf("Daemon stopped on signal")
		return nil
	}
	return err
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a resident daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonStatus()
		},
	}
}

func runDaemonStatus() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := singleinstance.NewClient(portsFromConfig(cfg))
	status, err := client.Status(ctx)
	if errors.Is(err, singleinstance.ErrNoResident) {
		fmt.Println("not-running")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(status)
	return nil
}

func newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask the resident daemon to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonStop()
		},
	}
}

func runDaemonStop() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := singleinstance.NewClient(portsFromConfig(cfg))
	acked, err := client.Shutdown(ctx)
	if err != nil {
		return err
	}
	if !acked {
		fmt.Println("no daemon running")
		return nil
	}
	fmt.Println("daemon stopped")
	return nil
}
