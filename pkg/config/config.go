package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rulebridge/rulebridge-go/pkg/guard"
	"github.com/rulebridge/rulebridge-go/pkg/logging"
	"github.com/rulebridge/rulebridge-go/pkg/message"
	"github.com/rulebridge/rulebridge-go/pkg/pin"
	"github.com/rulebridge/rulebridge-go/pkg/transport"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// GPIO drivers.
const (
	DriverPeriph = "periph"
	DriverMemory = "memory"
)

// Console modes.
const (
	ConsoleTerminal = "terminal"
	ConsoleSerial   = "serial"
	ConsoleNone     = "none"
)

// Config is the complete node configuration.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Guard     GuardConfig     `yaml:"guard"`
	GPIO      GPIOConfig      `yaml:"gpio"`
	Console   ConsoleConfig   `yaml:"console"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Log       LogConfig       `yaml:"log"`
}

// NodeConfig holds the node identity settings.
type NodeConfig struct {
	// ID overrides the derived node identity.
	ID string `yaml:"id"`

	// AlwaysReply publishes command output even without reply_me.
	AlwaysReply bool `yaml:"always_reply"`

	// Prompt is the interpreter prompt.
	Prompt string `yaml:"prompt"`
}

// MQTTConfig holds broker settings.
type MQTTConfig struct {
	Broker         string        `yaml:"broker"`
	Topic          string        `yaml:"topic"`
	ClientID       string        `yaml:"client_id"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	QoS            byte          `yaml:"qos"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// GuardConfig holds intake guard settings.
type GuardConfig struct {
	// Timeout is the watchdog timeout. Zero disables the watchdog.
	Timeout time.Duration `yaml:"timeout"`
}

// GPIOConfig selects the hardware driver and pin table.
type GPIOConfig struct {
	Driver string         `yaml:"driver"`
	Board  string         `yaml:"board"`
	Pins   map[string]int `yaml:"pins"`
}

// ConsoleConfig selects the local console.
type ConsoleConfig struct {
	Mode   string `yaml:"mode"`
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// DiscoveryConfig controls mDNS presence.
type DiscoveryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Interface string `yaml:"interface"`
}

// LogConfig controls operational logging and the event trace.
type LogConfig struct {
	Level     string `yaml:"level"`
	Journal   string `yaml:"journal"`
	TraceFile string `yaml:"trace_file"`

	// TraceMaxSize rotates the trace file at this many bytes. Zero keeps
	// a single growing file.
	TraceMaxSize int64 `yaml:"trace_max_size"`
}

// Default returns a configuration with sensible defaults.
func Default() Config {
	return Config{
		Node: NodeConfig{
			Prompt: "rules> ",
		},
		MQTT: MQTTConfig{
			Broker:         "tcp://localhost:1883",
			Topic:          transport.DefaultTopic,
			QoS:            transport.DefaultQoS,
			ConnectTimeout: transport.DefaultConnectTimeout,
		},
		Guard: GuardConfig{
			Timeout: guard.DefaultTimeout,
		},
		GPIO: GPIOConfig{
			Driver: DriverPeriph,
			Board:  pin.BoardRaspberryPi,
		},
		Console: ConsoleConfig{
			Mode: ConsoleTerminal,
			Baud: 115200,
		},
		Discovery: DiscoveryConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:   "info",
			Journal: string(logging.JournalAuto),
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return Config{}, le
		}
		return Config{}, &LoadError{File: path, Message: err.Error(), Cause: err}
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &LoadError{Message: "failed to parse YAML", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if strings.EqualFold(c.Node.ID, message.Broadcast) {
		return fmt.Errorf("%w: node.id must not be the broadcast address %q", ErrInvalidConfig, message.Broadcast)
	}
	if strings.TrimSpace(c.MQTT.Topic) == "" {
		return fmt.Errorf("%w: mqtt.topic is required", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.MQTT.Topic, "+#") {
		return fmt.Errorf("%w: mqtt.topic must not contain wildcards", ErrInvalidConfig)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("%w: mqtt.qos must be 0, 1 or 2", ErrInvalidConfig)
	}
	if c.Guard.Timeout < 0 {
		return fmt.Errorf("%w: guard.timeout must not be negative", ErrInvalidConfig)
	}

	switch c.GPIO.Driver {
	case DriverPeriph, DriverMemory:
	default:
		return fmt.Errorf("%w: gpio.driver %q", ErrInvalidConfig, c.GPIO.Driver)
	}
	if _, err := pin.BoardTable(c.GPIO.Board); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for name, line := range c.GPIO.Pins {
		if line < 0 {
			return fmt.Errorf("%w: gpio.pins.%s has negative line %d", ErrInvalidConfig, name, line)
		}
	}

	switch c.Console.Mode {
	case ConsoleTerminal, ConsoleNone:
	case ConsoleSerial:
		if c.Console.Device == "" {
			return fmt.Errorf("%w: console.device is required in serial mode", ErrInvalidConfig)
		}
		if c.Console.Baud <= 0 {
			return fmt.Errorf("%w: console.baud must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: console.mode %q", ErrInvalidConfig, c.Console.Mode)
	}

	if c.Log.TraceMaxSize < 0 {
		return fmt.Errorf("%w: log.trace_max_size must not be negative", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := logging.ParseJournalMode(c.Log.Journal); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// PinTable returns the board table with the configured overrides applied.
func (c *Config) PinTable() (pin.Table, error) {
	table, err := pin.BoardTable(c.GPIO.Board)
	if err != nil {
		return nil, err
	}
	return table.With(c.GPIO.Pins), nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// LoadError provides details about a configuration loading error.
type LoadError struct {
	// File is the path that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil && e.Cause.Error() != msg {
		msg += ": " + e.Cause.Error()
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
