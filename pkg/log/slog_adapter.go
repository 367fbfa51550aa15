package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", Attrs(event)...)
}

// Attrs flattens an event into slog attributes.
func Attrs(event Event) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("node", event.NodeID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Peer != "" {
		attrs = append(attrs, slog.String("peer", event.Peer))
	}
	if event.MessageID != "" {
		attrs = append(attrs, slog.String("msg_id", event.MessageID))
	}

	switch {
	case event.Message != nil:
		attrs = append(attrs,
			slog.String("src", event.Message.Src),
			slog.String("dst", event.Message.Dst),
			slog.String("body", event.Message.Body),
			slog.Bool("reply_me", event.Message.ReplyMe),
		)
		if event.Message.Truncated {
			attrs = append(attrs, slog.Bool("truncated", true))
		}
	case event.Drop != nil:
		attrs = append(attrs, slog.String("reason", event.Drop.Reason))
	case event.Execution != nil:
		attrs = append(attrs,
			slog.String("source", event.Execution.Source),
			slog.String("completion", event.Execution.Completion),
			slog.Duration("duration", event.Execution.Duration),
			slog.Int("replies", event.Execution.Replies),
		)
	case event.Guard != nil:
		attrs = append(attrs,
			slog.String("old_state", event.Guard.OldState),
			slog.String("new_state", event.Guard.NewState),
		)
		if event.Guard.Holder != "" {
			attrs = append(attrs, slog.String("holder", event.Guard.Holder))
		}
	case event.Pin != nil:
		attrs = append(attrs,
			slog.String("op", event.Pin.Op),
			slog.String("pin", event.Pin.Name),
			slog.Int("line", event.Pin.Line),
		)
		if event.Pin.Mode != "" {
			attrs = append(attrs, slog.String("mode", event.Pin.Mode))
		}
		if event.Pin.Level != "" {
			attrs = append(attrs, slog.String("level", event.Pin.Level))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}
	return attrs
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
