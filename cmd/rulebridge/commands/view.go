// Package commands implements the trace inspection subcommands of rulebridge.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rulebridge/rulebridge-go/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// FilterOptions are the raw filter flags shared by the trace commands.
type FilterOptions struct {
	Node      string
	Peer      string
	MessageID string
	TimeStart string
	TimeEnd   string
	Direction string
	Category  string
}

// Filter converts the flags into a log.Filter.
func (o FilterOptions) Filter() (log.Filter, error) {
	filter := log.Filter{
		NodeID:    o.Node,
		Peer:      o.Peer,
		MessageID: o.MessageID,
	}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	if o.Direction != "" {
		d, err := ParseDirectionFlag(o.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := ParseCategoryFlag(o.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	return filter, nil
}

// ParseDirectionFlag parses a direction flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	d, ok := log.ParseDirection(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid direction: %s (must be in, out, or local)", s)
	}
	return d, nil
}

// ParseCategoryFlag parses a category flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be message, drop, execution, reply, guard, pin, or error)", s)
	}
	return c, nil
}

// RunView prints matching events in human-readable form.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes one event followed by a blank line.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timestampLayout)
	fmt.Fprintf(w, "%s [%s] %-5s %s", ts, event.NodeID, event.Direction, event.Category)
	if event.Peer != "" {
		fmt.Fprintf(w, " peer=%s", event.Peer)
	}
	if event.MessageID != "" {
		fmt.Fprintf(w, " msg_id=%s", event.MessageID)
	}
	fmt.Fprintln(w)

	switch {
	case event.Message != nil:
		m := event.Message
		fmt.Fprintf(w, "  %s -> %s", m.Src, m.Dst)
		if m.ReplyMe {
			fmt.Fprint(w, " (reply requested)")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Body: %s", m.Body)
		if m.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	case event.Drop != nil:
		fmt.Fprintf(w, "  Reason: %s\n", event.Drop.Reason)
	case event.Execution != nil:
		e := event.Execution
		fmt.Fprintf(w, "  Source: %s  Completion: %s  Duration: %s  Replies: %d\n",
			e.Source, e.Completion, formatDuration(e.Duration), e.Replies)
	case event.Guard != nil:
		g := event.Guard
		if g.OldState != "" {
			fmt.Fprintf(w, "  %s -> %s", g.OldState, g.NewState)
		} else {
			fmt.Fprintf(w, "  -> %s", g.NewState)
		}
		if g.Holder != "" {
			fmt.Fprintf(w, " (holder %s)", g.Holder)
		}
		fmt.Fprintln(w)
	case event.Pin != nil:
		p := event.Pin
		fmt.Fprintf(w, "  %s %s (line %d)", p.Op, p.Name, p.Line)
		if p.Mode != "" {
			fmt.Fprintf(w, " mode=%s", p.Mode)
		}
		if p.Level != "" {
			fmt.Fprintf(w, " level=%s", p.Level)
		}
		fmt.Fprintln(w)
	case event.Error != nil:
		fmt.Fprintf(w, "  Message: %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}

	fmt.Fprintln(w)
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
