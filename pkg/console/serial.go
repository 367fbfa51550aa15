package console

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// SerialConfig configures a serial console.
type SerialConfig struct {
	Device string
	Baud   int

	// ReadTimeout bounds each read. Zero blocks.
	ReadTimeout time.Duration
}

// OpenSerial opens a UART as a console line source with local echo.
func OpenSerial(cfg SerialConfig) (*Stream, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial console %s: %w", cfg.Device, err)
	}
	return NewStream(port, port, true), nil
}
