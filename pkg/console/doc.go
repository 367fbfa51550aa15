// Package console is the local command intake of a node.
//
// A Console reads lines from a LineSource and feeds them to the interpreter
// through the intake guard, the same way network commands arrive. Three
// sources exist: Terminal (readline on a TTY), Serial (a UART, the only
// console on headless boards) and Stream (any reader/writer pair).
//
// The console also installs an output router so everything the interpreter
// prints outside a network command reaches the operator.
package console
