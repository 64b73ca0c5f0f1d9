// Package clipboard writes recognized text to the system clipboard.
// Wayland sessions go through wl-copy; elsewhere the X11 selection is
// written directly.
package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	xclipboard "golang.design/x/clipboard"
)

var (
	writeMu   sync.Mutex
	useWlCopy bool

	wlCopyCommand = "wl-copy"
)

// Init picks the clipboard backend. Must be called before Write.
func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()

	if os.Getenv("WAYLAND_DISPLAY") != "" {
		if _, err := exec.LookPath(wlCopyCommand); err == nil {
			useWlCopy = true
			return nil
		}
	}
	if err := xclipboard.Init(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	return nil
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()

	if useWlCopy {
		return writeWlCopy(text)
	}
	xclipboard.Write(xclipboard.FmtText, []byte(text))
	return nil
}

func writeWlCopy(text string) error {
	// wl-copy forks a background process to serve the selection, so
	// the foreground command returns quickly; the timeout only guards
	// against a wedged compositor.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, wlCopyCommand, "--type", "text/plain")
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %v: %s", wlCopyCommand, err, msg)
		}
		return fmt.Errorf("%s: %v", wlCopyCommand, err)
	}
	return nil
}
