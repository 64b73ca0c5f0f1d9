package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// Client talks to a resident daemon over the control socket.
type Client struct {
	ports Ports
}

func NewClient(ports Ports) *Client {
	return &Client{ports: ports}
}

// Detect scans the port range and returns the port of a resident
// daemon that answers PING.
func (c *Client) Detect(ctx context.Context) (int, bool) {
	timeout := 300 * time.Millisecond
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < timeout {
			timeout = d
		}
	}
	start, end := c.ports.span()
	for port := start; port <= end; port++ {
		if ping(net.JoinHostPort(residentHost, strconv.Itoa(port)), timeout) {
			return port, true
		}
		if ctx.Err() != nil {
			return 0, false
		}
	}
	return 0, false
}

// Status asks the resident daemon for its lifecycle state name.
func (c *Client) Status(ctx context.Context) (string, error) {
	port, ok := c.Detect(ctx)
	if !ok {
		return "", ErrNoResident
	}
	conn, err := c.dial(ctx, port)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "STATUS\n"); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Capture delegates one capture run to a resident daemon. The first
// return is false when no daemon is listening, so the caller should
// run the capture locally.
func (c *Client) Capture(ctx context.Context, outputToStdout bool) (delegated bool, text string, err error) {
	port, ok := c.Detect(ctx)
	if !ok {
		return false, "", nil
	}
	conn, err := c.dial(ctx, port)
	if err != nil {
		// Daemon vanished between detection and dial.
		return false, "", nil
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	verb := "CAPTURE CLIPBOARD"
	if outputToStdout {
		verb = "CAPTURE STDOUT"
	}
	if _, err := io.WriteString(conn, verb+"\n"); err != nil {
		return true, "", err
	}

	// The daemon replies only after the whole session, including the
	// user's interactive selection, so the read has no deadline of its
	// own; ctx cancellation closes the connection.
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return true, "", err
	}
	status = strings.TrimSpace(status)
	switch {
	case strings.HasPrefix(status, "SUCCESS"):
		var n int
		if _, err := fmt.Sscanf(status, "SUCCESS %d", &n); err != nil || n <= 0 {
			return true, "", nil
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return true, "", err
		}
		return true, string(buf), nil
	case strings.HasPrefix(status, "ERROR "):
		return true, "", errors.New(strings.TrimPrefix(status, "ERROR "))
	default:
		return true, "", fmt.Errorf("unexpected response %q", status)
	}
}

// Shutdown asks the resident daemon to stop. The first return is
// false when no daemon is listening.
func (c *Client) Shutdown(ctx context.Context) (bool, error) {
	port, ok := c.Detect(ctx)
	if !ok {
		return false, nil
	}
	conn, err := c.dial(ctx, port)
	if err != nil {
		return false, nil
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "SHUTDOWN\n"); err != nil {
		return true, err
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return true, err
	}
	if strings.TrimSpace(line) != "BYE" {
		return true, fmt.Errorf("unexpected response %q", strings.TrimSpace(line))
	}
	return true, nil
}

func (c *Client) dial(ctx context.Context, port int) (net.Conn, error) {
	timeout := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			timeout = d
		}
	}
	return net.DialTimeout("tcp", net.JoinHostPort(residentHost, strconv.Itoa(port)), timeout)
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := io.WriteString(conn, pingRequest+"\n"); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
