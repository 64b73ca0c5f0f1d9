// Package hotkey registers the global capture hotkey.
package hotkey

import (
	"fmt"
	"log"
	"strings"

	gohook "github.com/robotn/gohook"
)

// Parse normalizes a spec like "super+shift+t" into gohook key names.
// The super/win/meta aliases all map to gohook's "cmd".
func Parse(spec string) ([]string, error) {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(spec), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "win", "super", "cmd", "meta":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("empty hotkey configuration %q", spec)
	}
	return keys, nil
}

// Listen registers the combination and invokes the callback on every
// press. The hook event pump runs in a background goroutine until Stop.
func Listen(spec string, callback func()) error {
	keys, err := Parse(spec)
	if err != nil {
		return err
	}
	log.Printf("Hotkey listener configured for: %s (keys %v)", spec, keys)

	gohook.Register(gohook.KeyDown, keys, func(e gohook.Event) {
		log.Printf("Hotkey activated: %s", spec)
		if callback != nil {
			callback()
		}
	})

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()
		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: hook event channel unavailable, hotkey disabled")
			return
		}
		<-gohook.Process(evChan)
		log.Printf("Hotkey event pump stopped")
	}()
	return nil
}

// Stop tears down the global hook.
func Stop() {
	gohook.End()
}
