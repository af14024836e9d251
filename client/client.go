// ABOUTME: RuntimeClient connection lifecycle and the single inbound listener loop.
// ABOUTME: Owns the socket, correlates responses to pending requests, and dispatches the rest.

package client

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/2389/kumeo-client/protocol"
)

// readBufferSize matches the runtime's socket read buffer.
const readBufferSize = 64 * 1024

// RuntimeClient exchanges envelopes with the locally running Kumeo runtime
// over a persistent Unix domain socket. Any number of goroutines may invoke
// send-and-await operations concurrently; a single listener goroutine owns
// the read side for the lifetime of each connection.
//
// The zero value is not usable; construct with New. Use Connect to establish
// the connection and defer Close to guarantee release on every exit path.
type RuntimeClient struct {
	socketPath   string
	timeout      time.Duration
	maxFrameSize int
	logger       *slog.Logger
	dial         Dialer
	mkdir        DirMaker

	// mu guards conn, connected, and done.
	mu        sync.Mutex
	conn      net.Conn
	connected bool
	done      chan struct{}

	// writeMu serializes frame writes to the socket.
	writeMu sync.Mutex

	pending  *pendingSet
	handlers *handlerRegistry
}

// New creates a client for the runtime socket. The returned client is
// disconnected; call Connect before issuing operations.
func New(opts ...Option) *RuntimeClient {
	c := &RuntimeClient{
		socketPath:   DefaultSocketPath,
		timeout:      DefaultTimeout,
		maxFrameSize: protocol.DefaultMaxFrameSize,
		logger:       slog.Default(),
		pending:      newPendingSet(),
		handlers:     newHandlerRegistry(),
	}
	c.dial = func(ctx context.Context, socketPath string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "unix", socketPath)
	}
	c.mkdir = func(dir string) error {
		return os.MkdirAll(dir, 0o755)
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Pongs are normally claimed by the correlator before dispatch runs;
	// anything that reaches this handler had no outstanding ping.
	c.handlers.register(protocol.TypePong, func(_ context.Context, msg *protocol.Message) error {
		c.logger.Debug("unmatched pong", "message_id", msg.MessageID)
		return nil
	})

	return c
}

// SocketPath returns the configured runtime socket path.
func (c *RuntimeClient) SocketPath() string { return c.socketPath }

// IsConnected reports whether the client currently holds a live connection.
func (c *RuntimeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect establishes the connection to the runtime: provisions the socket's
// parent directory, dials the endpoint with the configured timeout, starts
// the listener loop, and validates the channel end-to-end with a ping.
// Calling Connect while already connected is a no-op.
func (c *RuntimeClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.mkdir(filepath.Dir(c.socketPath)); err != nil {
		return &ConnectionError{Op: "prepare socket directory", Err: err}
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dial(dialCtx, c.socketPath)
	if err != nil {
		if isTimeout(err) {
			return &TimeoutError{Op: "connect " + c.socketPath, Duration: c.timeout}
		}
		return &ConnectionError{Op: "connect " + c.socketPath, Err: err}
	}

	done := make(chan struct{})
	c.mu.Lock()
	if c.connected {
		// Lost a connect race; keep the winner's connection.
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.connected = true
	c.done = done
	c.mu.Unlock()

	go c.listen(conn, done)
	c.logger.Info("connected to runtime", "socket", c.socketPath)

	// End-to-end validation: the socket being open is not enough, the
	// runtime has to answer.
	if _, err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return &ConnectionError{Op: "validate connection", Err: err}
	}
	return nil
}

// Close shuts the connection down and waits for the listener loop to exit.
// It is a no-op when not connected, safe to call repeatedly, and always
// transitions the client to disconnected — a failing socket close is logged,
// never surfaced. The error return exists only for io.Closer compatibility
// and is always nil.
func (c *RuntimeClient) Close() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	done := c.done
	c.connected = false
	c.mu.Unlock()

	if err := conn.Close(); err != nil {
		c.logger.Warn("error closing runtime socket", "error", err)
	}
	if done != nil {
		<-done
	}
	return nil
}

// RegisterHandler registers a callback for unsolicited envelopes of the
// given type. Handlers run sequentially in registration order. The returned
// id removes this registration via UnregisterHandler.
func (c *RuntimeClient) RegisterHandler(t protocol.MessageType, fn Handler) HandlerID {
	return c.handlers.register(t, fn)
}

// UnregisterHandler removes a previously registered handler.
func (c *RuntimeClient) UnregisterHandler(t protocol.MessageType, id HandlerID) {
	c.handlers.unregister(t, id)
}

// Send transmits an envelope of the given type without awaiting a response.
func (c *RuntimeClient) Send(ctx context.Context, t protocol.MessageType, payload any) error {
	return c.write(ctx, protocol.NewMessage(t, payload))
}

// Request transmits an envelope and blocks until the matching response
// arrives, the timeout elapses, or the connection drops. A non-positive
// timeout selects the client default.
func (c *RuntimeClient) Request(ctx context.Context, t protocol.MessageType, payload any, timeout time.Duration) (*protocol.Message, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}

	msg := protocol.NewMessage(t, payload)
	ch, err := c.pending.add(msg.MessageID)
	if err != nil {
		return nil, err
	}

	if err := c.write(ctx, msg); err != nil {
		c.pending.remove(msg.MessageID)
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, &ConnectionError{Op: "await response to " + t.String(), Err: ErrConnectionLost}
		}
		return resp, nil

	case <-timer.C:
		c.pending.remove(msg.MessageID)
		// The response may have been delivered between the timer firing and
		// the removal — drain rather than discard it.
		select {
		case resp, ok := <-ch:
			if ok {
				return resp, nil
			}
		default:
		}
		return nil, &TimeoutError{Op: "await response to " + t.String(), Duration: timeout}

	case <-ctx.Done():
		c.pending.remove(msg.MessageID)
		select {
		case resp, ok := <-ch:
			if ok {
				return resp, nil
			}
		default:
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Op: "await response to " + t.String(), Duration: timeout}
		}
		return nil, ctx.Err()
	}
}

// write encodes and transmits one frame. Transport failures are wrapped into
// the taxonomy; a failed write also tears the connection down so the
// listener can reject all pending requests.
func (c *RuntimeClient) write(ctx context.Context, msg *protocol.Message) error {
	frame, err := protocol.EncodeFrame(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()

	if !connected || conn == nil {
		return &ConnectionError{Op: "send " + msg.MessageType.String(), Err: ErrNotConnected}
	}

	c.writeMu.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
	}
	_, err = conn.Write(frame)
	c.writeMu.Unlock()

	if err != nil {
		if isTimeout(err) {
			return &TimeoutError{Op: "send " + msg.MessageType.String(), Duration: c.timeout}
		}
		// A broken write means the connection is gone; closing the socket
		// wakes the listener, which handles the disconnect exactly once.
		_ = conn.Close()
		return &ConnectionError{Op: "send " + msg.MessageType.String(), Err: err}
	}
	return nil
}

// listen is the single inbound loop for one connection. It decodes frames in
// arrival order, offers each envelope to the correlator first, and dispatches
// unclaimed ones to registered handlers. It exits on the first fatal read
// error, handling the disconnect exactly once.
func (c *RuntimeClient) listen(conn net.Conn, done chan struct{}) {
	defer close(done)

	reader := bufio.NewReaderSize(conn, readBufferSize)
	for {
		body, err := protocol.ReadFrame(reader, c.maxFrameSize)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.logger.Error("runtime connection read failed", "error", err)
			}
			break
		}

		msg, err := protocol.DecodeMessage(body)
		if err != nil {
			// The frame boundary was unambiguous; drop the body and keep
			// listening.
			c.logger.Error("dropping undecodable frame", "bytes", len(body), "error", err)
			continue
		}

		if c.pending.resolve(msg.MessageID, msg) {
			continue
		}
		c.handlers.dispatch(context.Background(), msg, c.logger)
	}

	c.disconnect(conn)
}

// disconnect marks the client disconnected and rejects every pending request
// with a connection loss. Runs once per connection, from the listener.
func (c *RuntimeClient) disconnect(conn net.Conn) {
	c.mu.Lock()
	wasConnected := c.connected
	if c.conn == conn {
		c.connected = false
		c.conn = nil
	}
	c.mu.Unlock()

	_ = conn.Close()
	c.pending.rejectAll()

	if wasConnected {
		c.logger.Info("disconnected from runtime", "socket", c.socketPath)
	}
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
