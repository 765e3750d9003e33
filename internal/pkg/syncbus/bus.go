package syncbus

import (
	"context"
	"sync"
)

// Handler receives every message seen on the bus, including the caller's own
// publishes when the underlying transport echoes them. Subscribers filter by
// Message.Origin if they need to ignore themselves.
type Handler func(*Message)

// Bus is a coarse invalidation channel between contexts holding their own
// copy of the platform data. Publish is fire-and-forget; delivery order
// between concurrent publishers is not guaranteed.
type Bus interface {
	Publish(ctx context.Context, msg *Message) error
	Subscribe(handler Handler) (unsubscribe func())
	Close() error
}

// LocalBus is an in-process Bus. Handlers run synchronously on the
// publisher's goroutine, which keeps single-process tests deterministic.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[int]Handler
	next     int
	closed   bool
}

// NewLocalBus creates an in-process bus
func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[int]Handler)}
}

// Publish delivers the message to every current subscriber
func (b *LocalBus) Publish(_ context.Context, msg *Message) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil
	}
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
	return nil
}

// Subscribe registers a handler and returns a function that removes it
func (b *LocalBus) Subscribe(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Close drops all subscribers; subsequent publishes are no-ops
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[int]Handler)
	return nil
}
