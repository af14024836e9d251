// ABOUTME: Length-prefixed frame codec for the Kumeo runtime socket.
// ABOUTME: Encodes envelopes as 4-byte big-endian length + JSON body, decodes with partial-read accumulation.

package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

const (
	// lengthSize is the width of the frame length prefix in bytes.
	lengthSize = 4

	// DefaultMaxFrameSize bounds the declared length of an inbound frame.
	DefaultMaxFrameSize = 16 << 20
)

// EncodeFrame serializes an envelope into a complete wire frame. A marshal
// failure surfaces as a ProtocolError so senders can report it without
// touching the connection.
func EncodeFrame(msg *Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, &ProtocolError{Reason: "encode message", Err: err}
	}

	frame := make([]byte, lengthSize+len(body))
	binary.BigEndian.PutUint32(frame[:lengthSize], uint32(len(body)))
	copy(frame[lengthSize:], body)
	return frame, nil
}

// ReadFrame reads one frame body from r: exactly 4 length bytes, then exactly
// that many payload bytes. Partial reads are accumulated until the declared
// length is available. maxSize <= 0 selects DefaultMaxFrameSize.
//
// Errors from ReadFrame are fatal to the stream: a clean EOF on the length
// boundary is io.EOF, truncation mid-frame is io.ErrUnexpectedEOF, and an
// oversized length prefix is a ProtocolError wrapping ErrFrameTooLarge. In
// every case the caller must not reuse the stream.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}

	var header [lengthSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame length: %w", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > uint32(maxSize) {
		return nil, &ProtocolError{
			Reason: fmt.Sprintf("frame length %d exceeds limit %d", length, maxSize),
			Err:    ErrFrameTooLarge,
		}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return body, nil
}

// DecodeMessage parses a frame body into an envelope. A parse failure here is
// not fatal to the connection — the frame boundary was already consumed, so
// the caller drops the frame and keeps listening.
func DecodeMessage(body []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, &ProtocolError{Reason: "decode message", Err: err}
	}
	return &msg, nil
}
