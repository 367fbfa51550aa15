// Package node assembles one bridge node.
//
// A Node owns the interpreter environment and wires the pin registry,
// mediator, intake guard, message router, transport, console and presence
// advertisement around it. It registers the pin and messaging builtins the
// rules use:
//
//	(pin-mode NAME MODE)          configure a pin, returns TRUE
//	(digital-read NAME)           sample an input, returns LOW or HIGH
//	(digital-write NAME LEVEL)    drive an output, returns TRUE
//	(pin-reset NAME)              release the line and its PIN instance
//	(pin-value NAME)              last known level, no hardware access
//	(node-id)                     this node's identity
//	(mqtt-publish DST BODY [REPLY])  send a message, returns its msg_id
//	(exit)                        stop the node (console only)
package node
