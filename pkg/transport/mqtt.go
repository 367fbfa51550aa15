package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Default MQTT settings.
const (
	DefaultTopic          = "rulebridge/messages"
	DefaultQoS            = 1
	DefaultConnectTimeout = 10 * time.Second
)

// MQTTConfig configures the MQTT transport.
type MQTTConfig struct {
	// Broker URL, e.g. "tcp://broker.local:1883".
	Broker string

	// Topic shared by all nodes. Empty uses DefaultTopic.
	Topic string

	// ClientID must be unique per broker connection.
	ClientID string

	Username string
	Password string

	// QoS for publish and subscribe.
	QoS byte

	// ConnectTimeout bounds the initial connection. Zero uses DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// Logger for connection events. Nil disables logging.
	Logger *slog.Logger
}

// MQTT is a Transport over an MQTT broker.
type MQTT struct {
	cfg    MQTTConfig
	client mqtt.Client

	mu      sync.RWMutex
	handler Handler
	closed  bool
}

var _ Transport = (*MQTT)(nil)

// NewMQTT creates an unconnected MQTT transport.
func NewMQTT(cfg MQTTConfig) *MQTT {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	t := &MQTT{cfg: cfg}
	t.client = mqtt.NewClient(t.clientOptions())
	return t
}

// clientOptions builds the paho options. Inbound handlers run on their own
// goroutines (OrderMatters off) because dispatch executes commands and
// publishes replies, which must not stall paho's incoming pipeline.
func (t *MQTT) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(t.cfg.Broker).
		SetClientID(t.cfg.ClientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetOrderMatters(false).
		SetConnectTimeout(t.cfg.ConnectTimeout).
		SetOnConnectHandler(t.onConnect).
		SetConnectionLostHandler(t.onConnectionLost)
	if t.cfg.Username != "" {
		opts.SetUsername(t.cfg.Username)
		opts.SetPassword(t.cfg.Password)
	}
	return opts
}

// Topic returns the shared topic.
func (t *MQTT) Topic() string { return t.cfg.Topic }

// Subscribe sets the inbound handler. The subscription itself is
// (re-)established on every connect.
func (t *MQTT) Subscribe(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Connect connects to the broker.
func (t *MQTT) Connect(ctx context.Context) error {
	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	if err := wait(ctx, t.client.Connect()); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", t.cfg.Broker, err)
	}
	return nil
}

// Publish sends payload to the shared topic.
func (t *MQTT) Publish(ctx context.Context, payload []byte) error {
	if !t.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	if err := wait(ctx, t.client.Publish(t.cfg.Topic, t.cfg.QoS, false, payload)); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (t *MQTT) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	if t.client.IsConnected() {
		t.client.Unsubscribe(t.cfg.Topic).WaitTimeout(time.Second)
		t.client.Disconnect(250)
	}
	return nil
}

func (t *MQTT) onConnect(c mqtt.Client) {
	t.debugLog("mqtt connected", "broker", t.cfg.Broker, "topic", t.cfg.Topic)

	tok := c.Subscribe(t.cfg.Topic, t.cfg.QoS, t.deliver)
	go func() {
		if !tok.WaitTimeout(t.cfg.ConnectTimeout) || tok.Error() != nil {
			if t.cfg.Logger != nil {
				t.cfg.Logger.Error("mqtt subscribe failed", "topic", t.cfg.Topic, "error", tok.Error())
			}
		}
	}()
}

// deliver hands an inbound payload to the handler. It may block for the
// length of a command run.
func (t *MQTT) deliver(_ mqtt.Client, m mqtt.Message) {
	t.mu.RLock()
	h := t.handler
	t.mu.RUnlock()
	if h != nil {
		h(m.Payload())
	}
}

func (t *MQTT) onConnectionLost(_ mqtt.Client, err error) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Warn("mqtt connection lost", "broker", t.cfg.Broker, "error", err)
	}
}

func (t *MQTT) debugLog(msg string, args ...any) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Debug(msg, args...)
	}
}

// wait blocks until the token completes or ctx is done.
func wait(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
