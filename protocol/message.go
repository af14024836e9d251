// ABOUTME: Message envelope and message type enumeration for the Kumeo protocol.
// ABOUTME: Validates message types on decode and stamps new messages with id and capture time.

package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies how a Message payload is interpreted and routed.
type MessageType string

// The closed set of message types understood by the runtime.
const (
	TypePing             MessageType = "PING"
	TypePong             MessageType = "PONG"
	TypeResourceRequest  MessageType = "RESOURCE_REQUEST"
	TypeResourceResponse MessageType = "RESOURCE_RESPONSE"
	TypeEvent            MessageType = "EVENT"
	TypeCommand          MessageType = "COMMAND"
)

// ParseMessageType converts a wire string into a MessageType. Matching is
// case-insensitive. Unknown values return ErrInvalidMessageType rather than
// defaulting.
func ParseMessageType(s string) (MessageType, error) {
	switch t := MessageType(strings.ToUpper(s)); t {
	case TypePing, TypePong, TypeResourceRequest, TypeResourceResponse, TypeEvent, TypeCommand:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMessageType, s)
	}
}

// String returns the wire representation of the message type.
func (t MessageType) String() string { return string(t) }

// Message is the envelope exchanged with the runtime. MessageID correlates a
// response to its request; uniqueness only matters while the response is
// outstanding. Timestamp is the sender's capture time in seconds since the
// Unix epoch — informational only, never used for ordering.
type Message struct {
	MessageID   string      `json:"message_id"`
	MessageType MessageType `json:"message_type"`
	Payload     any         `json:"payload"`
	Timestamp   float64     `json:"timestamp"`
}

// NewMessage builds an envelope of the given type with a fresh message id and
// the current time.
func NewMessage(t MessageType, payload any) *Message {
	return &Message{
		MessageID:   uuid.New().String(),
		MessageType: t,
		Payload:     payload,
		Timestamp:   float64(time.Now().UnixNano()) / float64(time.Second),
	}
}

// UnmarshalJSON decodes an envelope and validates its message type.
func (m *Message) UnmarshalJSON(data []byte) error {
	type wire struct {
		MessageID   string  `json:"message_id"`
		MessageType string  `json:"message_type"`
		Payload     any     `json:"payload"`
		Timestamp   float64 `json:"timestamp"`
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	t, err := ParseMessageType(w.MessageType)
	if err != nil {
		return err
	}

	m.MessageID = w.MessageID
	m.MessageType = t
	m.Payload = w.Payload
	m.Timestamp = w.Timestamp
	return nil
}
