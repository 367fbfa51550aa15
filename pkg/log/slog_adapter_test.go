package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logJSON(t *testing.T, ev Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(ev)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterMessageEvent(t *testing.T) {
	entry := logJSON(t, Event{
		Timestamp: time.Now(), NodeID: "node1", Direction: DirectionIn, Category: CategoryMessage,
		Peer: "peerA", MessageID: "m1",
		Message: NewMessageEvent("peerA", "node1", "(digital-write D5 HIGH)", true),
	})

	checks := map[string]any{
		"msg":       "trace",
		"node":      "node1",
		"direction": "IN",
		"category":  "MESSAGE",
		"peer":      "peerA",
		"msg_id":    "m1",
		"body":      "(digital-write D5 HIGH)",
		"reply_me":  true,
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s: got %v, want %v", k, entry[k], want)
		}
	}
}

func TestSlogAdapterDropEvent(t *testing.T) {
	entry := logJSON(t, Event{NodeID: "node1", Category: CategoryDrop, Drop: &DropEvent{Reason: "guard busy"}})
	if entry["reason"] != "guard busy" {
		t.Errorf("reason: got %v", entry["reason"])
	}
}

func TestSlogAdapterPinEvent(t *testing.T) {
	entry := logJSON(t, Event{NodeID: "node1", Category: CategoryPin, Pin: &PinEvent{Op: "configure", Name: "D2", Line: 2, Mode: "OUTPUT"}})
	if entry["pin"] != "D2" || entry["mode"] != "OUTPUT" || entry["line"] != float64(2) {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["level"]; ok {
		t.Error("empty level should be omitted")
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	NewSlogAdapter(slog.New(handler)).Log(Event{NodeID: "node1"})
	if buf.Len() != 0 {
		t.Errorf("debug trace emitted at info level: %q", buf.String())
	}
}
