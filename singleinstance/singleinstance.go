// Package singleinstance owns the loopback control socket: daemon-side
// listening plus client-side detection and delegation.
//
// The protocol is line-based. Requests: PING, STATUS, CAPTURE CLIPBOARD,
// CAPTURE STDOUT, SHUTDOWN. Replies: PONG, the state name, SUCCESS with
// a length-prefixed payload, ERROR with a reason, BYE.
package singleinstance

import (
	"context"
	"errors"
)

const residentHost = "127.0.0.1"

// ErrNoResident is returned by client calls that need a daemon when
// none is listening.
var ErrNoResident = errors.New("no resident daemon")

// Ports configures the loopback scan range: Base is the first port
// tried, Base+Range the last.
type Ports struct {
	Base  int
	Range int
}

// DefaultPorts covers 49500-49550.
func DefaultPorts() Ports {
	return Ports{Base: 49500, Range: 50}
}

// span clamps the range to valid, ordered TCP ports.
func (p Ports) span() (int, int) {
	start := p.Base
	if start <= 0 {
		start = 49500
	}
	count := p.Range
	if count <= 0 {
		count = 50
	}
	end := start + count
	if start < 1024 {
		start = 1024
	}
	if end > 65535 {
		end = 65535
	}
	if end < start {
		start, end = end, start
	}
	return start, end
}

// Request is one control-socket command destined for the event loop.
// PING and STATUS are answered inline by the server and never reach
// the loop.
type Request struct {
	// Shutdown asks the daemon to stop.
	Shutdown bool
	// OutputToStdout sends the recognized text back over the
	// connection instead of the daemon's clipboard.
	OutputToStdout bool
}

// Conn is one accepted client connection.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess reports success with the payload text. Clipboard
	// deliveries pass an empty payload.
	RespondSuccess(text string) error
	// RespondError sends a single-line failure reason.
	RespondError(msg string) error
	// RespondBye acknowledges a shutdown request.
	RespondBye() error
	// Close closes the underlying connection.
	Close() error
}

// Server owns the control socket and hands accepted requests to the
// event loop.
type Server interface {
	// Start binds the first free port in the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close stops accepting clients.
	Close() error
}

// NewServer returns the TCP implementation. status is consulted for
// STATUS queries; nil reports "unknown".
func NewServer(ports Ports, status func() string) Server {
	return newTCPServer(ports, status)
}
