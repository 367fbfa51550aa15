package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rulebridge/rulebridge-go/pkg/config"
	"github.com/rulebridge/rulebridge-go/pkg/console"
	"github.com/rulebridge/rulebridge-go/pkg/discovery"
	"github.com/rulebridge/rulebridge-go/pkg/gpio"
	"github.com/rulebridge/rulebridge-go/pkg/identity"
	"github.com/rulebridge/rulebridge-go/pkg/log"
	"github.com/rulebridge/rulebridge-go/pkg/node"
	"github.com/rulebridge/rulebridge-go/pkg/pin"
	"github.com/rulebridge/rulebridge-go/pkg/transport"
	"github.com/rulebridge/rulebridge-go/pkg/version"
)

var (
	historyFile string
	offline     bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a node",
		Args:  cobra.NoArgs,
		RunE:  runNode,
	}
	cmd.Flags().StringVar(&historyFile, "history", "", "readline history file for the terminal console")
	cmd.Flags().BoolVar(&offline, "offline", false, "run on an in-process bus without a broker")
	return cmd
}

func runNode(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	id, err := identity.Resolve(cfg.Node.ID, identity.Options{})
	if err != nil {
		return err
	}
	logger = logger.With("node", id)

	table, err := cfg.PinTable()
	if err != nil {
		return err
	}
	driver, err := openDriver(cfg.GPIO.Driver)
	if err != nil {
		return err
	}

	trace, closeTrace, err := openTrace(cfg, logger)
	if err != nil {
		return err
	}
	defer closeTrace()

	src, showPrompt, err := openConsole(cfg)
	if err != nil {
		return err
	}

	ncfg := node.Config{
		NodeID:       id,
		Prompt:       cfg.Node.Prompt,
		AlwaysReply:  cfg.Node.AlwaysReply,
		GuardTimeout: cfg.Guard.Timeout,
		Table:        table,
		Driver:       driver,
		Transport:    newTransport(cfg, id, logger),
		Console:      src,
		ShowPrompt:   showPrompt,
		Banner:       version.String() + " node " + id + "\n",
		Logger:       logger,
		EventLogger:  trace,
	}
	if cfg.Discovery.Enabled && !offline {
		ncfg.Presence = newPresence(cfg, id, logger)
	}

	n, err := node.New(ncfg)
	if err != nil {
		if src != nil {
			_ = src.Close()
		}
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := n.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openDriver(name string) (pin.Driver, error) {
	switch name {
	case config.DriverMemory:
		return gpio.NewMemory(), nil
	default:
		return gpio.NewPeriph()
	}
}

func openConsole(cfg config.Config) (console.LineSource, bool, error) {
	switch cfg.Console.Mode {
	case config.ConsoleTerminal:
		t, err := console.NewTerminal(cfg.Node.Prompt, historyFile)
		return t, false, err
	case config.ConsoleSerial:
		s, err := console.OpenSerial(console.SerialConfig{
			Device: cfg.Console.Device,
			Baud:   cfg.Console.Baud,
		})
		return s, true, err
	default:
		return nil, false, nil
	}
}

func newTransport(cfg config.Config, id string, logger *slog.Logger) transport.Transport {
	if offline {
		logger.Warn("offline mode, remote commands are unavailable")
		return transport.NewBus().Endpoint(id)
	}
	return newMQTT(cfg, id, logger)
}

func newMQTT(cfg config.Config, id string, logger *slog.Logger) *transport.MQTT {
	clientID := cfg.MQTT.ClientID
	if clientID == "" {
		clientID = id
	}
	return transport.NewMQTT(transport.MQTTConfig{
		Broker:         cfg.MQTT.Broker,
		Topic:          cfg.MQTT.Topic,
		ClientID:       clientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		QoS:            cfg.MQTT.QoS,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
		Logger:         logger,
	})
}

func newPresence(cfg config.Config, id string, logger *slog.Logger) *discovery.Presence {
	adv := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
		Interface: cfg.Discovery.Interface,
		TTL:       discovery.DefaultAdvertiserConfig().TTL,
	})
	p := discovery.NewPresence(adv, discovery.NodeInfo{
		NodeID:  id,
		Topic:   cfg.MQTT.Topic,
		Broker:  cfg.MQTT.Broker,
		Board:   cfg.GPIO.Board,
		Version: version.Current,
		Port:    brokerPort(cfg.MQTT.Broker),
	})
	p.OnStateChange(func(old, new discovery.PresenceState) {
		logger.Info("presence changed", "from", old.String(), "to", new.String())
	})
	return p
}

// brokerPort extracts the port of the broker URL, falling back to the MQTT
// default.
func brokerPort(broker string) uint16 {
	u, err := url.Parse(broker)
	if err != nil || u.Port() == "" {
		return discovery.DefaultPort
	}
	port, err := strconv.ParseUint(u.Port(), 10, 16)
	if err != nil {
		return discovery.DefaultPort
	}
	return uint16(port)
}

// openTrace combines the trace file and, at debug level, the slog adapter.
func openTrace(cfg config.Config, logger *slog.Logger) (log.Logger, func(), error) {
	var loggers []log.Logger
	if cfg.Log.TraceFile != "" {
		f, err := log.NewFileLogger(cfg.Log.TraceFile, log.WithMaxSize(cfg.Log.TraceMaxSize))
		if err != nil {
			return nil, nil, fmt.Errorf("open trace file: %w", err)
		}
		loggers = append(loggers, f)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	trace := log.NewMultiLogger(loggers...)
	closeFn := func() {
		if err := trace.Close(); err != nil {
			logger.Warn("failed to close trace", "error", err)
		}
	}
	if trace.Len() == 0 {
		return nil, closeFn, nil
	}
	return trace, closeFn, nil
}
