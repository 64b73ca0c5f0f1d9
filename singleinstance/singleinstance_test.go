package singleinstance

import (
	"context"
	"testing"
	"time"
)

func startTestServer(t *testing.T, ports Ports, status func() string) Server {
	t.Helper()
	srv := NewServer(ports, status)
	if err := srv.Start(context.Background()); err != nil {
		t.Skipf("loopback listener unavailable in this environment: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestCaptureStdoutRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ports := Ports{Base: 49600, Range: 5}
	srv := startTestServer(t, ports, nil)

	client := NewClient(ports)
	type reply struct {
		delegated bool
		text      string
		err       error
	}
	replyCh := make(chan reply, 1)
	go func() {
		delegated, text, err := client.Capture(ctx, true)
		replyCh <- reply{delegated, text, err}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	req := conn.Request()
	if req.Shutdown || !req.OutputToStdout {
		t.Errorf("request = %+v, want stdout capture", req)
	}
	const text = "def foo():\n    return 1"
	if err := conn.RespondSuccess(text); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()

	r := <-replyCh
	if r.err != nil {
		t.Fatalf("client: %v", r.err)
	}
	if !r.delegated {
		t.Error("expected delegation")
	}
	if r.text != text {
		t.Errorf("text = %q, want %q", r.text, text)
	}
}

func TestCaptureClipboardRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ports := Ports{Base: 49606, Range: 5}
	srv := startTestServer(t, ports, nil)

	client := NewClient(ports)
	done := make(chan struct{})
	go func() {
		defer close(done)
		delegated, text, err := client.Capture(ctx, false)
		if err != nil {
			t.Errorf("client: %v", err)
		}
		if !delegated {
			t.Errorf("expected delegation")
		}
		if text != "" {
			t.Errorf("clipboard delivery should carry no payload, got %q", text)
		}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if conn.Request().OutputToStdout {
		t.Errorf("expected clipboard request")
	}
	if err := conn.RespondSuccess(""); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()
	<-done
}

func TestCaptureError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ports := Ports{Base: 49612, Range: 5}
	srv := startTestServer(t, ports, nil)

	client := NewClient(ports)
	errCh := make(chan error, 1)
	go func() {
		_, _, err := client.Capture(ctx, true)
		errCh <- err
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := conn.RespondError("busy"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()

	if err := <-errCh; err == nil || err.Error() != "busy" {
		t.Errorf("err = %v, want busy", err)
	}
}

func TestStatusAnsweredInline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ports := Ports{Base: 49618, Range: 5}
	startTestServer(t, ports, func() string { return "running" })

	client := NewClient(ports)
	state, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if state != "running" {
		t.Errorf("state = %q, want running", state)
	}
}

func TestShutdownRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ports := Ports{Base: 49624, Range: 5}
	srv := startTestServer(t, ports, nil)

	client := NewClient(ports)
	type reply struct {
		found bool
		err   error
	}
	replyCh := make(chan reply, 1)
	go func() {
		found, err := client.Shutdown(ctx)
		replyCh <- reply{found, err}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !conn.Request().Shutdown {
		t.Errorf("expected shutdown request, got %+v", conn.Request())
	}
	if err := conn.RespondBye(); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()

	r := <-replyCh
	if r.err != nil {
		t.Fatalf("client: %v", r.err)
	}
	if !r.found {
		t.Error("expected daemon to be found")
	}
}

func TestNoResident(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ports := Ports{Base: 49640, Range: 2}
	client := NewClient(ports)

	if _, ok := client.Detect(ctx); ok {
		t.Skip("unrelated service on the test port range")
	}
	delegated, _, err := client.Capture(ctx, true)
	if err != nil || delegated {
		t.Errorf("Capture = (%v, %v), want no delegation", delegated, err)
	}
	found, err := client.Shutdown(ctx)
	if err != nil || found {
		t.Errorf("Shutdown = (%v, %v), want not found", found, err)
	}
	if _, err := client.Status(ctx); err != ErrNoResident {
		t.Errorf("Status err = %v, want ErrNoResident", err)
	}
}

func TestTwoServersPickDistinctPorts(t *testing.T) {
	ports := Ports{Base: 49646, Range: 5}
	srv1 := startTestServer(t, ports, nil)
	srv2 := startTestServer(t, ports, nil)

	if srv1.Port() == srv2.Port() {
		t.Errorf("both servers bound port %d", srv1.Port())
	}
	start, end := ports.span()
	for _, p := range []int{srv1.Port(), srv2.Port()} {
		if p < start || p > end {
			t.Errorf("port %d outside range [%d,%d]", p, start, end)
		}
	}
}
