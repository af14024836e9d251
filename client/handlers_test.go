// ABOUTME: Dispatcher tests — ordering, failure isolation, identity-based removal.
// ABOUTME: Exercises both the registry directly and end-to-end dispatch through the listener.

package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/kumeo-client/protocol"
)

func TestDispatch_InvokesHandlersInRegistrationOrder(t *testing.T) {
	r := newHandlerRegistry()

	var order []string
	r.register(protocol.TypeEvent, func(ctx context.Context, msg *protocol.Message) error {
		order = append(order, "first")
		return nil
	})
	r.register(protocol.TypeEvent, func(ctx context.Context, msg *protocol.Message) error {
		order = append(order, "second")
		return nil
	})

	r.dispatch(context.Background(), protocol.NewMessage(protocol.TypeEvent, nil), discardLogger())
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatch_FailingHandlerDoesNotStopOthers(t *testing.T) {
	r := newHandlerRegistry()

	var order []string
	r.register(protocol.TypeEvent, func(ctx context.Context, msg *protocol.Message) error {
		order = append(order, "failing")
		return errors.New("handler exploded")
	})
	r.register(protocol.TypeEvent, func(ctx context.Context, msg *protocol.Message) error {
		order = append(order, "survivor")
		return nil
	})

	r.dispatch(context.Background(), protocol.NewMessage(protocol.TypeEvent, nil), discardLogger())
	assert.Equal(t, []string{"failing", "survivor"}, order)
}

func TestDispatch_PanickingHandlerIsIsolated(t *testing.T) {
	r := newHandlerRegistry()

	ran := false
	r.register(protocol.TypeCommand, func(ctx context.Context, msg *protocol.Message) error {
		panic("boom")
	})
	r.register(protocol.TypeCommand, func(ctx context.Context, msg *protocol.Message) error {
		ran = true
		return nil
	})

	r.dispatch(context.Background(), protocol.NewMessage(protocol.TypeCommand, nil), discardLogger())
	assert.True(t, ran, "handler after a panicking one must still run")
}

func TestDispatch_NoHandlersForType(t *testing.T) {
	r := newHandlerRegistry()
	// Nothing registered — dispatch is a no-op, not a failure.
	r.dispatch(context.Background(), protocol.NewMessage(protocol.TypeEvent, nil), discardLogger())
}

func TestUnregister_RemovesByIdentity(t *testing.T) {
	r := newHandlerRegistry()

	var order []string
	id := r.register(protocol.TypeEvent, func(ctx context.Context, msg *protocol.Message) error {
		order = append(order, "removed")
		return nil
	})
	r.register(protocol.TypeEvent, func(ctx context.Context, msg *protocol.Message) error {
		order = append(order, "kept")
		return nil
	})

	r.unregister(protocol.TypeEvent, id)
	r.dispatch(context.Background(), protocol.NewMessage(protocol.TypeEvent, nil), discardLogger())
	assert.Equal(t, []string{"kept"}, order)

	// Unregistering twice, or for the wrong type, is a no-op.
	r.unregister(protocol.TypeEvent, id)
	r.unregister(protocol.TypeCommand, id)
}

// =============================================================================
// End-to-end dispatch through the listener
// =============================================================================

func TestListener_DispatchesUnclaimedEnvelopes(t *testing.T) {
	c, peer := newTestClient(t)

	events := make(chan string, 4)
	c.RegisterHandler(protocol.TypeEvent, func(ctx context.Context, msg *protocol.Message) error {
		payload, _ := msg.Payload.(map[string]any)
		subject, _ := payload["subject"].(string)
		events <- "a:" + subject
		return nil
	})
	c.RegisterHandler(protocol.TypeEvent, func(ctx context.Context, msg *protocol.Message) error {
		payload, _ := msg.Payload.(map[string]any)
		subject, _ := payload["subject"].(string)
		events <- "b:" + subject
		return nil
	})

	connect(t, c)

	peer.send(t, protocol.NewMessage(protocol.TypeEvent, map[string]any{"subject": "vm.started"}))

	for _, want := range []string{"a:vm.started", "b:vm.started"} {
		select {
		case got := <-events:
			assert.Equal(t, want, got)
		case <-time.After(testWait):
			t.Fatal("timeout waiting for event dispatch")
		}
	}
}

func TestListener_HandlerOrderPreservedAcrossMessages(t *testing.T) {
	c, peer := newTestClient(t)

	seen := make(chan string, 8)
	c.RegisterHandler(protocol.TypeCommand, func(ctx context.Context, msg *protocol.Message) error {
		payload, _ := msg.Payload.(map[string]any)
		name, _ := payload["command"].(string)
		seen <- name
		return nil
	})

	connect(t, c)

	// Inbound frames are processed strictly in arrival order by the single
	// listener, so commands arrive in the order they were written.
	for _, name := range []string{"restart", "drain", "resume"} {
		peer.send(t, protocol.NewMessage(protocol.TypeCommand, map[string]any{"command": name}))
	}

	for _, want := range []string{"restart", "drain", "resume"} {
		select {
		case got := <-seen:
			require.Equal(t, want, got)
		case <-time.After(testWait):
			t.Fatal("timeout waiting for command dispatch")
		}
	}
}

func TestRegisterHandler_AdditionalPongHandler(t *testing.T) {
	c, peer := newTestClient(t)

	pongs := make(chan string, 1)
	c.RegisterHandler(protocol.TypePong, func(ctx context.Context, msg *protocol.Message) error {
		pongs <- msg.MessageID
		return nil
	})

	connect(t, c)

	// An unsolicited pong is unclaimed by the correlator and reaches both the
	// default handler and the user-registered one.
	peer.send(t, protocol.NewMessage(protocol.TypePong, map[string]any{}))

	select {
	case id := <-pongs:
		assert.NotEmpty(t, id)
	case <-time.After(testWait):
		t.Fatal("timeout waiting for pong handler")
	}
}
