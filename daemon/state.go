// Package daemon tracks the lifecycle of the resident process.
package daemon

import (
	"fmt"
	"log"
	"sync"
)

// State is the lifecycle phase of the resident daemon.
type State int

const (
	StateNotRunning State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateNotRunning:
		return "not-running"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Lifecycle guards state transitions. Captures may only start while
// the daemon is Running.
type Lifecycle struct {
	mu    sync.RWMutex
	state State
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateNotRunning}
}

// State returns the current lifecycle phase.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Transition moves to the next phase and logs it. Only forward steps
// in the not-running → starting → running → stopping → not-running
// cycle are legal; Starting may also fall straight to Stopping when
// startup fails.
func (l *Lifecycle) Transition(next State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !legalTransition(l.state, next) {
		return fmt.Errorf("illegal state transition %s -> %s", l.state, next)
	}
	log.Printf("daemon: %s -> %s", l.state, next)
	l.state = next
	return nil
}

func legalTransition(from, to State) bool {
	switch from {
	case StateNotRunning:
		return to == StateStarting
	case StateStarting:
		return to == StateRunning || to == StateStopping
	case StateRunning:
		return to == StateStopping
	case StateStopping:
		return to == StateNotRunning
	default:
		return false
	}
}
