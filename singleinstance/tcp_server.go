package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"time"
)

const (
	pingRequest  = "PING"
	pongResponse = "PONG\n"
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	ports    Ports
	status   func() string
	lis      net.Listener
	incoming chan *tcpConn
	port     int
}

func newTCPServer(ports Ports, status func() string) Server {
	return &tcpServer{
		ports:    ports,
		status:   status,
		incoming: make(chan *tcpConn, 8),
	}
}

// Start binds the first free port in the range. Ports squatted by
// unrelated services are skipped; a full range means another daemon
// has every slot and Start fails.
func (s *tcpServer) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	start, end := s.ports.span()
	for port := start; port <= end; port++ {
		addr := fmt.Sprintf("%s:%d", residentHost, port)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			continue
		}
		s.lis = lis
		s.port = port
		log.Printf("control socket: listening on %s", addr)
		go s.acceptLoop(ctx)
		return nil
	}
	return fmt.Errorf("no free control port in [%d,%d]", start, end)
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int { return s.port }

func (s *tcpServer) acceptLoop(ctx context.Context) {
	for {
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		remote := c.RemoteAddr().String()
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		br := bufio.NewReader(c)
		line, _ := br.ReadString('\n')
		bw := bufio.NewWriter(c)

		var req Request
		switch strings.TrimSpace(line) {
		case pingRequest:
			log.Printf("control socket: PING from %s -> PONG", remote)
			_, _ = bw.WriteString(pongResponse)
			_ = bw.Flush()
			_ = c.Close()
			continue
		case "STATUS":
			state := "unknown"
			if s.status != nil {
				state = s.status()
			}
			log.Printf("control socket: STATUS from %s -> %s", remote, state)
			_, _ = bw.WriteString(state + "\n")
			_ = bw.Flush()
			_ = c.Close()
			continue
		case "CAPTURE CLIPBOARD":
			req = Request{}
		case "CAPTURE STDOUT":
			req = Request{OutputToStdout: true}
		case "SHUTDOWN":
			req = Request{Shutdown: true}
		default:
			log.Printf("control socket: unknown command from %s: %q", remote, strings.TrimSpace(line))
			_, _ = bw.WriteString("ERROR unknown command\n")
			_ = bw.Flush()
			_ = c.Close()
			continue
		}

		// Captures run long; the deadline only covered the request line.
		_ = c.SetDeadline(time.Time{})
		log.Printf("control socket: request from %s: %+v", remote, req)
		select {
		case s.incoming <- &tcpConn{c: c, req: req, w: bw}:
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tc := <-s.incoming:
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	if s.lis != nil {
		_ = s.lis.Close()
		s.lis = nil
	}
	return nil
}

type tcpConn struct {
	c   net.Conn
	req Request
	w   *bufio.Writer
}

func (tc *tcpConn) Request() Request { return tc.req }

func (tc *tcpConn) RespondSuccess(text string) error {
	if _, err := fmt.Fprintf(tc.w, "SUCCESS %d\n", len(text)); err != nil {
		return err
	}
	if len(text) > 0 {
		if _, err := tc.w.WriteString(text); err != nil {
			return err
		}
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondError(msg string) error {
	msg = strings.ReplaceAll(msg, "\n", " ")
	if _, err := tc.w.WriteString("ERROR " + msg + "\n"); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondBye() error {
	if _, err := tc.w.WriteString("BYE\n"); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
