// Package notification shows desktop notifications over D-Bus.
package notification

import (
	"log"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod = "org.freedesktop.Notifications.Notify"

	appName       = "screen-ocr-code"
	previewLimit  = 200
	expireTimeout = int32(5000) // ms
)

var (
	mu     sync.Mutex
	lastID uint32
)

// Notify shows a desktop notification. A missing notification daemon
// is logged, never fatal. Subsequent notifications replace the
// previous one instead of stacking.
func Notify(summary, body string) {
	conn, err := dbus.SessionBus()
	if err != nil {
		log.Printf("notification: session bus unavailable: %v", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	call := conn.Object(notifyDest, notifyPath).Call(notifyMethod, 0,
		appName, lastID, "", summary, body,
		[]string{}, map[string]dbus.Variant{}, expireTimeout)
	if call.Err != nil {
		log.Printf("notification: %v", call.Err)
		return
	}
	_ = call.Store(&lastID)
}

// ShowResult surfaces a successful capture with a preview of the
// copied text.
func ShowResult(text string) {
	Notify("Text copied", preview(text))
}

// ShowError surfaces a failed capture.
func ShowError(err error) {
	if err == nil {
		return
	}
	Notify("Capture failed", preview(err.Error()))
}

// preview truncates long text for the notification body.
func preview(text string) string {
	if len(text) > previewLimit {
		return text[:previewLimit] + "..."
	}
	return text
}
