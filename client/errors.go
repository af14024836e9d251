// ABOUTME: Error taxonomy for runtime client operations.
// ABOUTME: Transport failures, timeouts, and classified resource outcomes — callers never see raw socket errors.

package client

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for errors.Is classification.
var (
	// ErrNotConnected indicates an operation was attempted before Connect
	// succeeded or after the connection dropped.
	ErrNotConnected = errors.New("not connected to runtime")

	// ErrConnectionLost indicates the connection dropped while requests were
	// outstanding. Every pending request is rejected with it exactly once.
	ErrConnectionLost = errors.New("connection to runtime lost")

	// ErrResourceNotFound classifies a failed resource request whose error
	// identifies a missing resource.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrPermissionDenied classifies a failed resource request the runtime
	// refused on authorization grounds.
	ErrPermissionDenied = errors.New("permission denied")

	// errDuplicatePending indicates a request id was registered while an
	// entry for the same id was still outstanding. Ids are generated by the
	// client, so hitting this is a caller error.
	errDuplicatePending = errors.New("request id already pending")
)

// ConnectionError reports that the transport was unavailable, refused, or
// lost during the named operation.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError reports that a connect attempt or response wait exceeded its
// deadline.
type TimeoutError struct {
	Op       string
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Op, e.Duration)
}

// Timeout reports this error as a timeout, matching the net.Error convention.
func (e *TimeoutError) Timeout() bool { return true }

// RuntimeError carries a failure reported by the runtime that did not match
// any more specific classification.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }
