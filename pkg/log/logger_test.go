package log

import (
	"errors"
	"testing"
	"time"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{Timestamp: time.Now(), NodeID: "node1", Category: CategoryMessage}
	logger.Log(event)

	event.Drop = &DropEvent{Reason: "busy"}
	logger.Log(event)
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) is not a NoopLogger")
	}
	rec := &recordingLogger{}
	if OrNoop(rec) != Logger(rec) {
		t.Error("OrNoop replaced a non-nil logger")
	}
}

type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(e Event) { r.events = append(r.events, e) }

func TestMultiLogger(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := NewMultiLogger(a, nil, b)

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	m.Log(Event{NodeID: "node1"})
	m.Log(Event{NodeID: "node2"})

	if len(a.events) != 2 || len(b.events) != 2 {
		t.Errorf("got %d and %d events, want 2 each", len(a.events), len(b.events))
	}
	if b.events[1].NodeID != "node2" {
		t.Errorf("order: got %q", b.events[1].NodeID)
	}
}

func TestLoggerFunc(t *testing.T) {
	var got []string
	var l Logger = LoggerFunc(func(e Event) { got = append(got, e.MessageID) })
	l.Log(Event{MessageID: "m1"})
	l.Log(Event{MessageID: "m2"})
	if len(got) != 2 || got[1] != "m2" {
		t.Errorf("got %v", got)
	}
}

type closingLogger struct {
	recordingLogger
	closed bool
	err    error
}

func (c *closingLogger) Close() error {
	c.closed = true
	return c.err
}

func TestMultiLoggerClose(t *testing.T) {
	boom := errors.New("boom")
	a := &closingLogger{}
	b := &closingLogger{err: boom}
	m := NewMultiLogger(a, &recordingLogger{}, b)

	err := m.Close()
	if !errors.Is(err, boom) {
		t.Errorf("Close() = %v, want %v", err, boom)
	}
	if !a.closed || !b.closed {
		t.Error("not every closer was closed")
	}
	if err := NewMultiLogger().Close(); err != nil {
		t.Errorf("empty Close() = %v", err)
	}
}
