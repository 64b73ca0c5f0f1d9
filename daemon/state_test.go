package daemon

import (
	"testing"
)

func TestStateString(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{StateNotRunning, "not-running"},
		{StateStarting, "starting"},
		{StateRunning, "running"},
		{StateStopping, "stopping"},
		{State(99), "unknown"},
	}
	for _, c := range cases {
		if got := c.state.String(); got != c.want {
			t.Errorf("State(%d).String() = %q, want %q", c.state, got, c.want)
		}
	}
}

func TestLifecycleFullCycle(t *testing.T) {
	l := NewLifecycle()
	if l.State() != StateNotRunning {
		t.Fatalf("initial state = %s, want not-running", l.State())
	}

	for _, next := range []State{StateStarting, StateRunning, StateStopping, StateNotRunning} {
		if err := l.Transition(next); err != nil {
			t.Fatalf("Transition(%s) failed: %v", next, err)
		}
		if l.State() != next {
			t.Fatalf("state = %s, want %s", l.State(), next)
		}
	}
}

func TestLifecycleStartupFailurePath(t *testing.T) {
	l := NewLifecycle()
	if err := l.Transition(StateStarting); err != nil {
		t.Fatalf("Transition(starting) failed: %v", err)
	}
	if err := l.Transition(StateStopping); err != nil {
		t.Errorf("starting should be allowed to fall to stopping: %v", err)
	}
}

func TestLifecycleRejectsIllegalTransitions(t *testing.T) {
	cases := []struct {
		from, to State
	}{
		{StateNotRunning, StateRunning},
		{StateNotRunning, StateStopping},
		{StateStarting, StateNotRunning},
		{StateRunning, StateStarting},
		{StateRunning, StateNotRunning},
		{StateStopping, StateRunning},
	}
	for _, c := range cases {
		l := &Lifecycle{state: c.from}
		if err := l.Transition(c.to); err == nil {
			t.Errorf("Transition %s -> %s should fail", c.from, c.to)
		}
		if l.State() != c.from {
			t.Errorf("failed transition must not change state, got %s", l.State())
		}
	}
}
