package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToAllIncludingSender(t *testing.T) {
	bus := NewBus()
	a, b := bus.Endpoint("a"), bus.Endpoint("b")

	var gotA, gotB []string
	a.Subscribe(func(p []byte) { gotA = append(gotA, string(p)) })
	b.Subscribe(func(p []byte) { gotB = append(gotB, string(p)) })

	require.NoError(t, a.Connect(context.Background()))
	require.NoError(t, b.Connect(context.Background()))

	require.NoError(t, a.Publish(context.Background(), []byte("hello")))

	assert.Equal(t, []string{"hello"}, gotA)
	assert.Equal(t, []string{"hello"}, gotB)
	assert.Len(t, bus.Published(), 1)
}

func TestBusPublishRequiresConnect(t *testing.T) {
	bus := NewBus()
	a := bus.Endpoint("a")

	assert.ErrorIs(t, a.Publish(context.Background(), []byte("x")), ErrNotConnected)

	require.NoError(t, a.Connect(context.Background()))
	require.NoError(t, a.Close())
	assert.ErrorIs(t, a.Publish(context.Background(), []byte("x")), ErrNotConnected)
	assert.ErrorIs(t, a.Connect(context.Background()), ErrClosed)
}

func TestBusClosedEndpointStopsReceiving(t *testing.T) {
	bus := NewBus()
	a, b := bus.Endpoint("a"), bus.Endpoint("b")
	_ = a.Connect(context.Background())

	count := 0
	b.Subscribe(func([]byte) { count++ })
	_ = b.Close()

	_ = a.Publish(context.Background(), []byte("x"))
	assert.Equal(t, 0, count)
}

func TestBusReentrantPublish(t *testing.T) {
	bus := NewBus()
	a, b := bus.Endpoint("a"), bus.Endpoint("b")
	ctx := context.Background()
	_ = a.Connect(ctx)
	_ = b.Connect(ctx)

	var gotA []string
	a.Subscribe(func(p []byte) { gotA = append(gotA, string(p)) })
	b.Subscribe(func(p []byte) {
		if string(p) == "ping" {
			_ = b.Publish(ctx, []byte("pong"))
		}
	})

	require.NoError(t, a.Publish(ctx, []byte("ping")))
	assert.Equal(t, []string{"ping", "pong"}, gotA)
}

func TestBusPublishHonoursContext(t *testing.T) {
	bus := NewBus()
	a := bus.Endpoint("a")
	_ = a.Connect(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, a.Publish(ctx, []byte("x")), context.Canceled)
}
