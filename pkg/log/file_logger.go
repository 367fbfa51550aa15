package log

import (
	"fmt"
	"os"
	"sync"
)

// FileOption configures a FileLogger.
type FileOption func(*FileLogger)

// WithMaxSize rotates the trace once it reaches n bytes. The previous
// trace is kept as path + ".1"; older generations are discarded.
// Zero or a negative n disables rotation.
func WithMaxSize(n int64) FileOption {
	return func(l *FileLogger) {
		l.maxSize = n
	}
}

// FileLogger appends CBOR trace events to a file.
// It is safe for concurrent use.
type FileLogger struct {
	mu        sync.Mutex
	path      string
	maxSize   int64
	file      *os.File
	size      int64
	rotations int
	failures  int
	closed    bool
}

// NewFileLogger opens path for appending, creating it if needed.
func NewFileLogger(path string, opts ...FileOption) (*FileLogger, error) {
	l := &FileLogger{path: path}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	l.file = f
	l.size = info.Size()
	return nil
}

// Log appends an event. Events that fail to encode or write are counted
// and dropped so tracing never stalls the bridge.
func (l *FileLogger) Log(event Event) {
	data, err := EncodeEvent(event)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err != nil {
		l.failures++
		return
	}

	n, err := l.file.Write(data)
	l.size += int64(n)
	if err != nil {
		l.failures++
		return
	}

	if l.maxSize > 0 && l.size >= l.maxSize {
		if err := l.rotate(); err != nil {
			l.failures++
		}
	}
}

// rotate moves the current file aside and starts a fresh one.
// Called with mu held.
func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(l.path, l.path+".1"); err != nil {
		// Keep appending to the oversized file rather than losing events.
		if oerr := l.open(); oerr != nil {
			l.closed = true
			return fmt.Errorf("reopen %s: %w", l.path, oerr)
		}
		return err
	}
	if err := l.open(); err != nil {
		l.closed = true
		return err
	}
	l.rotations++
	return nil
}

// Stats reports the current file size, completed rotations and dropped events.
func (l *FileLogger) Stats() (size int64, rotations, failures int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size, l.rotations, l.failures
}

// Path returns the trace file path.
func (l *FileLogger) Path() string {
	return l.path
}

// Close syncs and closes the file. Later Log calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	serr := l.file.Sync()
	if err := l.file.Close(); err != nil {
		return err
	}
	return serr
}

var _ Logger = (*FileLogger)(nil)
