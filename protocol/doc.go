// ABOUTME: Package documentation for the Kumeo wire protocol types and framing.
// ABOUTME: Describes the message envelope, payload types, and the length-prefixed frame codec.

// Package protocol defines the wire-level types exchanged with the Kumeo
// runtime and the frame codec that carries them over the socket.
//
// # Envelope
//
// Every exchange is a Message envelope:
//
//	{ "message_id": "...", "message_type": "PING", "payload": {...}, "timestamp": 1700000000.5 }
//
// message_type is one of PING, PONG, RESOURCE_REQUEST, RESOURCE_RESPONSE,
// EVENT, COMMAND. Unknown types are rejected at decode time — the protocol
// never silently defaults a message type.
//
// # Framing
//
// A frame is a 4-byte big-endian unsigned length followed by exactly that
// many bytes of UTF-8 JSON:
//
//	[4 bytes: length N][N bytes: JSON envelope]
//
// There is no magic number and no version byte; framing relies entirely on
// the length prefix, so the encoding must be reproduced bit-exact. EncodeFrame
// and ReadFrame implement the two directions. ReadFrame accumulates partial
// reads until the declared length is available, so back-to-back frames are
// recovered intact even when the transport delivers arbitrarily small chunks.
//
// Errors are split by severity: a bad length prefix or truncated body
// desynchronizes the stream and is fatal to the connection, while a frame
// whose JSON body fails to parse is merely dropped — the frame boundary was
// already unambiguous, so the stream stays usable.
package protocol
