package transport

import (
	"context"
	"sync"
)

// Bus is an in-process topic. Publish delivers synchronously to every
// endpoint, the publisher included, in attach order.
type Bus struct {
	mu        sync.Mutex
	endpoints []*Endpoint
	published [][]byte
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Endpoint attaches a new named endpoint to the bus.
func (b *Bus) Endpoint(name string) *Endpoint {
	b.mu.Lock()
	defer b.mu.Unlock()

	ep := &Endpoint{bus: b, name: name}
	b.endpoints = append(b.endpoints, ep)
	return ep
}

// Published returns copies of every payload sent over the bus.
func (b *Bus) Published() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([][]byte, len(b.published))
	for i, p := range b.published {
		out[i] = append([]byte(nil), p...)
	}
	return out
}

func (b *Bus) deliver(payload []byte) {
	b.mu.Lock()
	b.published = append(b.published, append([]byte(nil), payload...))
	eps := append([]*Endpoint(nil), b.endpoints...)
	b.mu.Unlock()

	for _, ep := range eps {
		if h := ep.currentHandler(); h != nil {
			h(append([]byte(nil), payload...))
		}
	}
}

// Endpoint is one node's attachment to a Bus.
type Endpoint struct {
	bus  *Bus
	name string

	mu        sync.Mutex
	handler   Handler
	connected bool
	closed    bool
}

var _ Transport = (*Endpoint)(nil)

// Name returns the endpoint name.
func (e *Endpoint) Name() string { return e.name }

// Subscribe sets the inbound handler.
func (e *Endpoint) Subscribe(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = h
}

// Connect marks the endpoint connected.
func (e *Endpoint) Connect(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.connected = true
	return nil
}

// Publish delivers payload to every endpoint on the bus.
func (e *Endpoint) Publish(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	ok := e.connected && !e.closed
	e.mu.Unlock()
	if !ok {
		return ErrNotConnected
	}
	e.bus.deliver(payload)
	return nil
}

// Close detaches the endpoint from delivery.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.connected = false
	return nil
}

func (e *Endpoint) currentHandler() Handler {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	return e.handler
}
