// Package transport carries encoded messages between nodes.
//
// All nodes share one pub/sub topic. Every node receives every message,
// including its own, and the router filters by address. MQTT is the
// production transport; Bus is an in-process stand-in with synchronous
// delivery used by tests and the loopback mode of the CLI.
package transport
