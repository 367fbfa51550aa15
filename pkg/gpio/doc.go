// Package gpio provides pin.Driver implementations.
//
// Periph drives real lines through periph.io and addresses them by BCM
// number ("GPIO17"). Memory is a loopback driver for tests and for hosts
// without GPIO hardware: written levels latch on the line and are returned
// by subsequent reads, pull-ups read high and external stimulus can be
// injected with SetInput.
package gpio
