package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// JournalMode selects whether records are sent to the systemd journal.
type JournalMode string

const (
	// JournalAuto enables the journal when running as a systemd service.
	JournalAuto JournalMode = "auto"

	// JournalOn always tries the journal.
	JournalOn JournalMode = "on"

	// JournalOff never uses the journal.
	JournalOff JournalMode = "off"
)

// Options configures New.
type Options struct {
	// Writer receives text output. Nil means os.Stderr.
	Writer io.Writer

	// Level is the minimum level. Nil means info.
	Level *slog.LevelVar

	// Journal selects journal output. Empty means JournalAuto.
	Journal JournalMode

	// Attrs are added to every record.
	Attrs []slog.Attr
}

// ParseLevel converts debug/info/warn/error to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// ParseJournalMode validates a journal mode string.
func ParseJournalMode(s string) (JournalMode, error) {
	switch m := JournalMode(strings.ToLower(s)); m {
	case "", JournalAuto:
		return JournalAuto, nil
	case JournalOn, JournalOff:
		return m, nil
	default:
		return JournalAuto, fmt.Errorf("invalid journal mode %q", s)
	}
}

// New builds a logger from opts.
func New(opts Options) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = new(slog.LevelVar)
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	underSystemd := IsSystemdService()

	var handlers []slog.Handler

	// The journal already timestamps and captures stderr of services.
	var text slog.Handler
	if !underSystemd || opts.Journal == JournalOff {
		text = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
		handlers = append(handlers, text)
	}

	if wantJournal(opts.Journal, underSystemd) {
		jh, err := slogjournal.NewHandler(&slogjournal.Options{
			Level:        level,
			ReplaceGroup: journalKey,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		switch {
		case err == nil:
			handlers = append(handlers, jh)
		case text != nil:
			r := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
			r.Add("error", err)
			_ = text.Handle(context.Background(), r)
		default:
			// Nothing else would print; fall back to the writer.
			handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
		}
	}

	var h slog.Handler
	if len(handlers) == 1 {
		h = handlers[0]
	} else {
		h = slogmulti.Fanout(handlers...)
	}
	if len(opts.Attrs) > 0 {
		h = h.WithAttrs(opts.Attrs)
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func wantJournal(mode JournalMode, underSystemd bool) bool {
	switch mode {
	case JournalOn:
		return true
	case JournalOff:
		return false
	default:
		return underSystemd
	}
}

// IsSystemdService reports whether the process runs inside a systemd
// service unit.
func IsSystemdService() bool {
	if os.Getenv("INVOCATION_ID") != "" && os.Getenv("JOURNAL_STREAM") != "" {
		return true
	}
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}
	return cgroupIsService(string(content))
}

func cgroupIsService(content string) bool {
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 3 {
			continue
		}
		if strings.HasSuffix(path.Dir(parts[2]), ".service") || strings.HasSuffix(parts[2], ".service") {
			return true
		}
	}
	return false
}

// journalKey maps an attribute key to a valid journal field name.
func journalKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(key))
}
