// Package eventloop coordinates the resident daemon: hotkey presses,
// control-socket requests, and finished captures all funnel through a
// single goroutine so state stays race-free without fine-grained locks.
package eventloop

import (
	"context"
	"errors"
	"log"
	"time"

	"screen-ocr-code/config"
	"screen-ocr-code/daemon"
	"screen-ocr-code/hotkey"
	"screen-ocr-code/notification"
	"screen-ocr-code/session"
	"screen-ocr-code/singleinstance"
	"screen-ocr-code/worker"
)

// ErrAlreadyRunning is returned by Run when another daemon already owns a
// control port in the configured range.
var ErrAlreadyRunning = errors.New("another daemon instance is already running")

// Pipeline carries the capture callbacks a session needs. The loop never
// calls them itself; they run on the worker goroutine.
type Pipeline struct {
	SelectRegion session.RegionSelectorFunc
	Capture      session.CaptureFunc
	Recognize    session.RecognizeFunc
}

// Loop is the single-threaded coordinator for hotkey and control-socket
// capture flows. At most one capture session is in flight at a time;
// further triggers are refused until it finishes.
type Loop struct {
	pipeline   Pipeline
	lifecycle  *daemon.Lifecycle
	pool       *worker.Pool
	srv        singleinstance.Server
	ports      singleinstance.Ports
	hotkeySpec string
	hotkeyOn   bool
	busy       bool
	results    chan result
	hotkeyCh   chan struct{}
	deadline   time.Duration
	notifier   session.Notifier
}

type result struct {
	text  string
	err   error
	close func() error
}

// New builds a loop from the loaded configuration. A nil cfg uses defaults
// throughout.
func New(cfg *config.Config, pipeline Pipeline) *Loop {
	ports := singleinstance.DefaultPorts()
	deadline := time.Duration(config.DefaultDeadline) * time.Second
	spec := config.DefaultHotkey
	if cfg != nil {
		ports.Base = cfg.PortBase
		ports.Range = cfg.PortRange
		deadline = time.Duration(cfg.OCRDeadlineSec) * time.Second
		spec = cfg.Hotkey
	}
	return &Loop{
		pipeline:   pipeline,
		lifecycle:  daemon.NewLifecycle(),
		pool:       worker.New(1),
		ports:      ports,
		hotkeySpec: spec,
		results:    make(chan result, 1),
		hotkeyCh:   make(chan struct{}, 4),
		deadline:   deadline,
		notifier:   desktopNotifier{},
	}
}

// State reports the daemon lifecycle state.
func (l *Loop) State() daemon.State { return l.lifecycle.State() }

// Run brings the daemon up and processes events until ctx is cancelled or a
// SHUTDOWN request arrives. It refuses to start when a resident daemon is
// already reachable on the configured port range.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.lifecycle.Transition(daemon.StateStarting); err != nil {
		return err
	}

	client := singleinstance.NewClient(l.ports)
	if _, found := client.Detect(ctx); found {
		_ = l.lifecycle.Transition(daemon.StateStopping)
		_ = l.lifecycle.Transition(daemon.StateNotRunning)
		return ErrAlreadyRunning
	}

	l.srv = singleinstance.NewServer(l.ports, func() string {
		return l.lifecycle.State().String()
	})
	if err := l.srv.Start(ctx); err != nil {
		_ = l.lifecycle.Transition(daemon.StateStopping)
		_ = l.lifecycle.Transition(daemon.StateNotRunning)
		return err
	}
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
	}

	l.startHotkey()
	if err := l.lifecycle.Transition(daemon.StateRunning); err != nil {
		l.shutdown()
		return err
	}

	// Accept in the background so the loop stays free for results and
	// hotkey events while a client connection is being established.
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return ctx.Err()
		case <-l.hotkeyCh:
			l.handleHotkey(ctx)
		case conn, ok := <-reqCh:
			if !ok {
				l.shutdown()
				return nil
			}
			if stop := l.handleConn(ctx, conn); stop {
				l.shutdown()
				return nil
			}
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

// startHotkey registers the global hotkey and posts presses into the loop.
// An empty spec disables the hotkey; the daemon then serves only the
// control socket.
func (l *Loop) startHotkey() {
	if l.hotkeySpec == "" {
		log.Printf("Hotkey disabled; daemon reachable via control socket only")
		return
	}
	err := hotkey.Listen(l.hotkeySpec, func() {
		select {
		case l.hotkeyCh <- struct{}{}:
		default:
		}
	})
	if err != nil {
		log.Printf("Warning: hotkey %q not registered: %v", l.hotkeySpec, err)
		return
	}
	l.hotkeyOn = true
	log.Printf("Hotkey registered: %s", l.hotkeySpec)
}

// handleConn dispatches one control-socket request. It reports true when
// the daemon should shut down.
func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) bool {
	req := conn.Request()
	if req.Shutdown {
		log.Printf("Shutdown requested over control socket")
		_ = conn.RespondBye()
		_ = conn.Close()
		return true
	}

	target := session.DelegatedTarget{Conn: conn, OutputToStdout: req.OutputToStdout}
	var notifier session.Notifier
	if !req.OutputToStdout {
		// The requesting process only prints an OK; the user looks at
		// the desktop, so notify there like the hotkey flow does.
		notifier = l.notifier
	}
	l.startSession(ctx, target, notifier, conn.Close, func() {
		_ = conn.RespondError("busy")
		_ = conn.Close()
	})
	return false
}

func (l *Loop) handleHotkey(ctx context.Context) {
	l.startSession(ctx, session.ClipboardTarget{}, l.notifier, nil, func() {
		notification.Notify("Capture busy", "Another capture is already in progress")
	})
}

// startSession submits one capture session to the worker. onBusy runs
// instead when a session is already in flight.
func (l *Loop) startSession(ctx context.Context, target session.ResultTarget, notifier session.Notifier, closeFn func() error, onBusy func()) {
	if l.busy {
		onBusy()
		return
	}
	opts := session.Options{
		Deadline:     l.deadline,
		SelectRegion: l.pipeline.SelectRegion,
		Capture:      l.pipeline.Capture,
		Recognize:    l.pipeline.Recognize,
		Target:       target,
		Notifier:     notifier,
	}
	l.busy = true
	submitted := l.pool.Submit(ctx, func(jobCtx context.Context) {
		res, err := session.Execute(jobCtx, opts)
		l.results <- result{text: res.Text, err: err, close: closeFn}
	})
	if !submitted {
		l.busy = false
		onBusy()
	}
}

// handleResult clears the busy flag and releases the delegated connection,
// if any. Delivery already happened on the worker.
func (l *Loop) handleResult(res result) {
	l.busy = false
	if res.close != nil {
		_ = res.close()
	}
	switch {
	case res.err == nil:
		log.Printf("Capture complete: %d chars delivered", len(res.text))
	case errors.Is(res.err, session.ErrSelectionCancelled):
		log.Printf("Capture cancelled by user")
	default:
		log.Printf("Capture failed: %v", res.err)
	}
}

// shutdown tears the daemon down, draining any in-flight session so its
// client still receives a response.
func (l *Loop) shutdown() {
	_ = l.lifecycle.Transition(daemon.StateStopping)
	if l.hotkeyOn {
		hotkey.Stop()
		l.hotkeyOn = false
	}
	if l.srv != nil {
		_ = l.srv.Close()
	}
	done := make(chan struct{})
	go func() {
		l.pool.Close()
		close(done)
	}()
	for {
		select {
		case res := <-l.results:
			l.handleResult(res)
		case <-done:
			_ = l.lifecycle.Transition(daemon.StateNotRunning)
			return
		}
	}
}

// desktopNotifier surfaces session outcomes as desktop notifications.
type desktopNotifier struct{}

func (desktopNotifier) Success(text string) { notification.ShowResult(text) }
func (desktopNotifier) Failure(err error)   { notification.ShowError(err) }
