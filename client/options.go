// ABOUTME: Functional options for constructing a RuntimeClient.
// ABOUTME: Socket path, timeouts, logging, and the dial/mkdir seams used by tests.

package client

import (
	"context"
	"log/slog"
	"net"
	"time"
)

const (
	// DefaultSocketPath is the well-known runtime-owned socket location.
	DefaultSocketPath = "/run/kumeo/runtime.sock"

	// DefaultTimeout applies to connect attempts and response waits unless
	// overridden per request.
	DefaultTimeout = 30 * time.Second
)

// Dialer opens the stream connection to the runtime endpoint. The default
// dials a Unix domain socket at the configured path.
type Dialer func(ctx context.Context, socketPath string) (net.Conn, error)

// DirMaker provisions the socket's parent directory before a connect attempt.
// The client never creates the remote endpoint itself, only the directory.
type DirMaker func(dir string) error

// Option configures a RuntimeClient.
type Option func(*RuntimeClient)

// WithSocketPath sets the filesystem path of the runtime socket.
func WithSocketPath(path string) Option {
	return func(c *RuntimeClient) { c.socketPath = path }
}

// WithTimeout sets the default timeout for connect attempts and response
// waits. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *RuntimeClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger. A nil logger disables diagnostics
// without affecting correctness.
func WithLogger(logger *slog.Logger) Option {
	return func(c *RuntimeClient) { c.logger = logger }
}

// WithDialer replaces the transport dialer. Used by tests to connect over an
// in-memory pipe instead of a real socket.
func WithDialer(dial Dialer) Option {
	return func(c *RuntimeClient) {
		if dial != nil {
			c.dial = dial
		}
	}
}

// WithDirMaker replaces the directory provisioning step performed before
// dialing. Used by tests to avoid touching the real filesystem.
func WithDirMaker(mkdir DirMaker) Option {
	return func(c *RuntimeClient) {
		if mkdir != nil {
			c.mkdir = mkdir
		}
	}
}

// WithMaxFrameSize bounds the declared length of inbound frames.
func WithMaxFrameSize(n int) Option {
	return func(c *RuntimeClient) {
		if n > 0 {
			c.maxFrameSize = n
		}
	}
}
