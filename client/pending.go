// ABOUTME: Pending-request correlation between outbound requests and inbound responses.
// ABOUTME: One-shot channels keyed by message id; each entry is destroyed exactly once.

package client

import (
	"sync"

	"github.com/2389/kumeo-client/protocol"
)

// pendingSet maps an outstanding request's message id to the channel its
// caller is waiting on. Each entry is removed exactly once, by whichever of
// response arrival, timeout, or disconnect occurs first. Channels have
// capacity 1 so the listener never blocks delivering a response; a closed
// channel signals connection loss to the waiter.
type pendingSet struct {
	mu      sync.Mutex
	entries map[string]chan *protocol.Message
}

func newPendingSet() *pendingSet {
	return &pendingSet{entries: make(map[string]chan *protocol.Message)}
}

// add registers a pending entry for id and returns the channel the caller
// should wait on. Registering a duplicate id while one is pending is a caller
// error — ids are client-generated, so this never happens in normal operation.
func (p *pendingSet) add(id string) (chan *protocol.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.entries[id]; exists {
		return nil, errDuplicatePending
	}

	ch := make(chan *protocol.Message, 1)
	p.entries[id] = ch
	return ch, nil
}

// resolve delivers msg to the waiter registered under id. It returns false
// when no entry exists — not an error, just a signal that the envelope is
// unclaimed and must fall through to the dispatcher. The entry is deleted
// before delivery so it can never be resolved twice.
func (p *pendingSet) resolve(id string, msg *protocol.Message) bool {
	p.mu.Lock()
	ch, ok := p.entries[id]
	if ok {
		delete(p.entries, id)
	}
	p.mu.Unlock()

	if !ok {
		return false
	}
	ch <- msg
	return true
}

// remove discards the entry for id without resolving it. Used on timeout and
// on send failure. Removing an already-resolved or unknown id is a no-op.
func (p *pendingSet) remove(id string) {
	p.mu.Lock()
	delete(p.entries, id)
	p.mu.Unlock()
}

// rejectAll closes every pending channel so blocked waiters observe
// connection loss. Invoked once when the connection drops.
func (p *pendingSet) rejectAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, ch := range p.entries {
		close(ch)
		delete(p.entries, id)
	}
}

// size reports the number of outstanding entries.
func (p *pendingSet) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
