// ABOUTME: Package documentation for the Kumeo runtime client.
// ABOUTME: Covers lifecycle, concurrency model, handler dispatch, and the error taxonomy.

// Package client connects generated Kumeo agent code to the locally running
// runtime over a persistent Unix domain socket.
//
// # Usage
//
//	c := client.New(client.WithSocketPath("/run/kumeo/runtime.sock"))
//	if err := c.Connect(ctx); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	rtt, err := c.Ping(ctx)
//	agents, err := c.ListAgents(ctx)
//
// Connect dials the socket, starts the listener loop, and validates the
// channel with a ping. Close is safe on every exit path: it is a no-op when
// disconnected and always leaves the client disconnected, even if the
// underlying close fails.
//
// # Concurrency
//
// One listener goroutine owns the socket's read side per connection. Any
// number of goroutines may call Ping, GetResource, ListAgents, Send, or
// Request concurrently; frame writes are serialized, and responses are
// correlated back to their callers by message id. Inbound envelopes are
// processed strictly in arrival order, so handler invocations for a given
// type are ordered across messages.
//
// A handler that never returns stalls the listener loop; there is no
// cooperative cancellation of an in-flight handler.
//
// # Errors
//
// Callers of send-and-await operations always receive a typed result or one
// of the taxonomy's error kinds, never a raw transport error:
//
//   - *ConnectionError — transport unavailable, refused, or lost
//   - *TimeoutError — connect or response wait exceeded its deadline
//   - *protocol.ProtocolError — malformed or unexpected message shape
//   - ErrResourceNotFound, ErrPermissionDenied — classified resource outcomes
//     (match with errors.Is)
//   - *RuntimeError — any other failure reported by the runtime
package client
