// ABOUTME: Package documentation for the fake runtime endpoint.
// ABOUTME: Explains what the fake implements and what it deliberately skips.

// Package fakeruntime provides a scriptable stand-in for the Kumeo runtime
// service. It speaks the real socket protocol, so client code exercised
// against it takes the same paths it takes in production: framing, request
// correlation, and unsolicited message dispatch all go over a real Unix
// socket.
//
// The fake answers PING with PONG, serves RESOURCE_REQUEST through
// registered ResourceFuncs (with a built-in "agents" listing), and can push
// EVENT or COMMAND envelopes to every connected client via Broadcast. It does
// not implement agent lifecycle, authentication, or any persistence.
package fakeruntime
