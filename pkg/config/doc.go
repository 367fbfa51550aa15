// Package config loads the node configuration from YAML.
//
// Load reads a file over Default, so omitted keys keep their defaults, and
// then runs Validate. Command-line flags are applied by the caller on top of
// the loaded value.
//
// Example:
//
//	node:
//	  id: node-kitchen
//	  always_reply: false
//	mqtt:
//	  broker: tcp://broker.local:1883
//	  topic: rulebridge/messages
//	guard:
//	  timeout: 30s
//	gpio:
//	  driver: periph
//	  board: raspberrypi
//	  pins:
//	    RELAY: 17
//	console:
//	  mode: terminal
//	discovery:
//	  enabled: true
//	log:
//	  level: info
//	  trace_file: /var/lib/rulebridge/trace.cbor
package config
