// ABOUTME: Protocol-level error values shared by the codec and the client.
// ABOUTME: ProtocolError marks malformed or unexpected message shapes at the application layer.

package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidMessageType indicates a message_type outside the known set.
var ErrInvalidMessageType = errors.New("invalid message type")

// ErrFrameTooLarge indicates a frame whose declared length exceeds the limit.
// After an oversized length prefix the stream cannot be resynchronized, so
// callers must terminate the connection.
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// ProtocolError reports a malformed or unexpected message at the application
// layer — a bad frame, an undecodable envelope, or a response whose shape
// does not match what the operation expects.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Err)
	}
	return "protocol: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return e.Err }
