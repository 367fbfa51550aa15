// Command rulebridge runs a GPIO rule bridge node and its tooling.
//
// Usage:
//
//	rulebridge <command> [flags]
//
// Commands:
//
//	run       Run a node: console, MQTT intake and mDNS presence
//	send      Publish one command to a node and print its replies
//	discover  List nodes advertising on the local network
//	pins      Show the pin table of a board
//	trace     Inspect trace files written with log.trace_file
//
// Examples:
//
//	# Run with a config file
//	rulebridge run --config /etc/rulebridge/node.yaml
//
//	# Drive a pin on another node
//	rulebridge send node-1a2b3c4d5e6f '(digital-write D5 HIGH)'
//
//	# Show drops recorded by a node
//	rulebridge trace view --category drop node.trace
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rulebridge/rulebridge-go/pkg/config"
	"github.com/rulebridge/rulebridge-go/pkg/logging"
	"github.com/rulebridge/rulebridge-go/pkg/version"
)

// DefaultConfigPath is read when --config is not given and the file exists.
const DefaultConfigPath = "/etc/rulebridge/config.yaml"

var (
	configPath string
	logLevel   string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rulebridge",
		Short:         "GPIO rule bridge over MQTT",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+DefaultConfigPath+" if present)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newRunCommand(),
		newSendCommand(),
		newDiscoverCommand(),
		newPinsCommand(),
		newTraceCommand(),
	)
	return root
}

// loadConfig reads the configuration selected by the global flags.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); errors.Is(err, fs.ErrNotExist) {
			cfg := config.Default()
			return cfg, applyOverrides(&cfg)
		}
		path = DefaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, applyOverrides(&cfg)
}

func applyOverrides(cfg *config.Config) error {
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg.Validate()
}

// newLogger builds the operational logger from the config.
func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	journal, err := logging.ParseJournalMode(cfg.Log.Journal)
	if err != nil {
		return nil, err
	}

	lv := new(slog.LevelVar)
	lv.Set(level)
	return logging.New(logging.Options{Level: lv, Journal: journal}), nil
}
