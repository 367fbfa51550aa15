package log

import (
	"errors"
	"io"
)

// MultiLogger fans events out to several loggers in order.
type MultiLogger []Logger

// NewMultiLogger combines loggers, skipping nil entries.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	m := make(MultiLogger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

// Len returns the number of attached loggers.
func (m MultiLogger) Len() int {
	return len(m)
}

// Log forwards the event to every attached logger.
func (m MultiLogger) Log(event Event) {
	for _, l := range m {
		l.Log(event)
	}
}

// Close closes every attached logger that holds a resource.
func (m MultiLogger) Close() error {
	var errs []error
	for _, l := range m {
		if c, ok := l.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

var (
	_ Logger    = MultiLogger(nil)
	_ io.Closer = MultiLogger(nil)
)
