package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulebridge/rulebridge-go/pkg/pin"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Guard.Timeout)
	assert.Equal(t, "rulebridge/messages", cfg.MQTT.Topic)
	assert.Equal(t, ConsoleTerminal, cfg.Console.Mode)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
node:
  id: node-kitchen
  always_reply: true
mqtt:
  broker: tcp://broker.local:1883
  qos: 2
guard:
  timeout: 5s
gpio:
  driver: memory
  board: nano-esp32
  pins:
    RELAY: 5
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, "node-kitchen", cfg.Node.ID)
	assert.True(t, cfg.Node.AlwaysReply)
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTT.Broker)
	assert.Equal(t, byte(2), cfg.MQTT.QoS)
	assert.Equal(t, 5*time.Second, cfg.Guard.Timeout)
	assert.Equal(t, DriverMemory, cfg.GPIO.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, "rulebridge/messages", cfg.MQTT.Topic)
	assert.Equal(t, "rules> ", cfg.Node.Prompt)

	table, err := cfg.PinTable()
	require.NoError(t, err)
	line, ok := table.Lookup("RELAY")
	require.True(t, ok)
	assert.Equal(t, pin.Line(5), line)
	line, _ = table.Lookup("D11")
	assert.Equal(t, pin.Line(11), line)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"broadcast id":   "node:\n  id: ALL\n",
		"wildcard topic": "mqtt:\n  topic: rulebridge/#\n",
		"bad qos":        "mqtt:\n  qos: 3\n",
		"negative guard": "guard:\n  timeout: -1s\n",
		"bad driver":     "gpio:\n  driver: sysfs\n",
		"bad board":      "gpio:\n  board: uno\n",
		"negative line":  "gpio:\n  pins:\n    X: -1\n",
		"serial device":  "console:\n  mode: serial\n",
		"bad console":    "console:\n  mode: web\n",
		"bad level":      "log:\n  level: loud\n",
		"bad journal":    "log:\n  journal: maybe\n",
		"negative trace": "log:\n  trace_max_size: -1\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("mqtt:\n  brokr: tcp://x\n"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "failed to parse YAML")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rulebridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("console:\n  mode: serial\n  device: /dev/ttyUSB0\n  baud: 9600\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ConsoleSerial, cfg.Console.Mode)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Console.Device)
	assert.Equal(t, 9600, cfg.Console.Baud)
}

func TestLoadErrorsCarryFile(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.File, "missing.yaml")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("gpio:\n  driver: sysfs\n"), 0o600))
	_, err = Load(bad)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, bad, le.File)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Node.ID = "node-a1"
	cfg.GPIO.Pins = map[string]int{"RELAY": 17}

	data, err := cfg.Marshal()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
