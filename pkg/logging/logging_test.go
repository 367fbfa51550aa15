package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseJournalMode(t *testing.T) {
	for in, want := range map[string]JournalMode{"": JournalAuto, "auto": JournalAuto, "ON": JournalOn, "off": JournalOff} {
		got, err := ParseJournalMode(in)
		if err != nil || got != want {
			t.Errorf("ParseJournalMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseJournalMode("maybe"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNewWritesText(t *testing.T) {
	t.Setenv("INVOCATION_ID", "")

	var buf bytes.Buffer
	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)

	logger := New(Options{
		Writer:  &buf,
		Level:   level,
		Journal: JournalOff,
		Attrs:   []slog.Attr{slog.String("node", "node-a1")},
	})
	logger.Debug("pin mode set", "pin", "D5")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", `msg="pin mode set"`, "pin=D5", "node=node-a1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf, Journal: JournalOff})
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output at info level: %q", buf.String())
	}
}

func TestCgroupIsService(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"0::/system.slice/rulebridge.service\n", true},
		{"0::/system.slice/rulebridge.service/init\n", true},
		{"0::/user.slice/user-1000.slice/session-2.scope\n", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cgroupIsService(tt.content); got != tt.want {
			t.Errorf("cgroupIsService(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestJournalKey(t *testing.T) {
	if got, want := journalKey("msg_id"), "MSG_ID"; got != want {
		t.Errorf("journalKey = %q, want %q", got, want)
	}
	if got, want := journalKey("pin.line"), "PIN_LINE"; got != want {
		t.Errorf("journalKey = %q, want %q", got, want)
	}
}
