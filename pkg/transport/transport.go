package transport

import (
	"context"
	"errors"
)

// Transport errors.
var (
	ErrNotConnected = errors.New("transport not connected")
	ErrClosed       = errors.New("transport closed")
)

// Handler receives raw inbound payloads. It may run on a transport-owned
// goroutine and must not block for long.
type Handler func(payload []byte)

// Publisher sends payloads to the shared topic.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Subscriber registers the inbound handler.
type Subscriber interface {
	Subscribe(h Handler)
}

// Transport is a connected publisher and subscriber.
type Transport interface {
	Publisher
	Subscriber
	Connect(ctx context.Context) error
	Close() error
}
