// ABOUTME: Type-keyed handler registry for unsolicited inbound envelopes.
// ABOUTME: Ordered invocation, identity-based removal, and per-handler failure isolation.

package client

import (
	"context"
	"log/slog"
	"sync"

	"github.com/2389/kumeo-client/protocol"
)

// Handler processes an unsolicited inbound envelope. A handler error is
// logged and isolated — it never stops other handlers or the listener loop.
type Handler func(ctx context.Context, msg *protocol.Message) error

// HandlerID identifies a registration for later removal. Go functions are
// not comparable, so the id returned at registration is the handler's
// identity.
type HandlerID uint64

type handlerEntry struct {
	id HandlerID
	fn Handler
}

// handlerRegistry maps each message type to its ordered handler list.
// Insertion order is invocation order; multiple handlers per type are
// allowed.
type handlerRegistry struct {
	mu     sync.RWMutex
	nextID HandlerID
	byType map[protocol.MessageType][]handlerEntry
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{byType: make(map[protocol.MessageType][]handlerEntry)}
}

func (r *handlerRegistry) register(t protocol.MessageType, fn Handler) HandlerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.byType[t] = append(r.byType[t], handlerEntry{id: r.nextID, fn: fn})
	return r.nextID
}

func (r *handlerRegistry) unregister(t protocol.MessageType, id HandlerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.byType[t]
	for i, e := range entries {
		if e.id == id {
			r.byType[t] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// dispatch invokes every handler registered for the envelope's type,
// sequentially in registration order. A failing or panicking handler is
// reported and skipped; the rest still run.
func (r *handlerRegistry) dispatch(ctx context.Context, msg *protocol.Message, logger *slog.Logger) {
	r.mu.RLock()
	entries := make([]handlerEntry, len(r.byType[msg.MessageType]))
	copy(entries, r.byType[msg.MessageType])
	r.mu.RUnlock()

	for _, entry := range entries {
		if err := invokeHandler(ctx, entry.fn, msg); err != nil {
			logger.Error("message handler failed",
				"message_type", msg.MessageType,
				"message_id", msg.MessageID,
				"error", err,
			)
		}
	}
}

// invokeHandler runs one handler, converting a panic into an error so a bad
// handler cannot take down the listener.
func invokeHandler(ctx context.Context, fn Handler, msg *protocol.Message) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &RuntimeError{Message: "handler panic: " + panicString(v)}
		}
	}()
	return fn(ctx, msg)
}

func panicString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic value"
}
