package log

import (
	"time"
	"unicode/utf8"
)

// MaxBodyLen bounds the message body stored in a MessageEvent.
const MaxBodyLen = 512

// Event is one bridge trace record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// NodeID is the identity of the node recording the event.
	NodeID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Peer is the remote node involved, if any.
	Peer string `cbor:"5,keyasint,omitempty"`

	// MessageID is the correlation id of the message involved, if any.
	MessageID string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Message   *MessageEvent   `cbor:"10,keyasint,omitempty"`
	Drop      *DropEvent      `cbor:"11,keyasint,omitempty"`
	Execution *ExecutionEvent `cbor:"12,keyasint,omitempty"`
	Guard     *GuardEvent     `cbor:"13,keyasint,omitempty"`
	Pin       *PinEvent       `cbor:"14,keyasint,omitempty"`
	Error     *ErrorEventData `cbor:"15,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an inbound message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outbound message.
	DirectionOut Direction = 1
	// DirectionLocal indicates an event with no network leg.
	DirectionLocal Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionLocal:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection converts a name produced by String back to a Direction.
func ParseDirection(s string) (Direction, bool) {
	for _, d := range []Direction{DirectionIn, DirectionOut, DirectionLocal} {
		if d.String() == s {
			return d, true
		}
	}
	return 0, false
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a network message.
	CategoryMessage Category = 0
	// CategoryDrop indicates a discarded inbound message.
	CategoryDrop Category = 1
	// CategoryExecution indicates a guarded command execution.
	CategoryExecution Category = 2
	// CategoryReply indicates a reply published or received.
	CategoryReply Category = 3
	// CategoryGuard indicates a guard or watchdog transition.
	CategoryGuard Category = 4
	// CategoryPin indicates a hardware pin change.
	CategoryPin Category = 5
	// CategoryError indicates an error event.
	CategoryError Category = 6
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryDrop:
		return "DROP"
	case CategoryExecution:
		return "EXECUTION"
	case CategoryReply:
		return "REPLY"
	case CategoryGuard:
		return "GUARD"
	case CategoryPin:
		return "PIN"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory converts a name produced by String back to a Category.
func ParseCategory(s string) (Category, bool) {
	for c := CategoryMessage; c <= CategoryError; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// MessageEvent captures a network message.
type MessageEvent struct {
	Src     string `cbor:"1,keyasint"`
	Dst     string `cbor:"2,keyasint"`
	Body    string `cbor:"3,keyasint,omitempty"`
	ReplyMe bool   `cbor:"4,keyasint,omitempty"`

	// Truncated indicates Body was cut to MaxBodyLen bytes.
	Truncated bool `cbor:"5,keyasint,omitempty"`
}

// NewMessageEvent builds a MessageEvent, truncating long bodies.
func NewMessageEvent(src, dst, body string, replyMe bool) *MessageEvent {
	ev := &MessageEvent{Src: src, Dst: dst, Body: body, ReplyMe: replyMe}
	if len(body) > MaxBodyLen {
		cut := MaxBodyLen
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		ev.Body = body[:cut]
		ev.Truncated = true
	}
	return ev
}

// DropEvent records why an inbound message was discarded.
type DropEvent struct {
	// Reason is the routing error text (e.g. "guard busy").
	Reason string `cbor:"1,keyasint"`
}

// ExecutionEvent records one guarded command run.
type ExecutionEvent struct {
	// Source is "console" or "network".
	Source string `cbor:"1,keyasint"`

	// Completion is the interpreter completion status.
	Completion string `cbor:"2,keyasint"`

	// Duration of feed and execute, stored as nanoseconds.
	Duration time.Duration `cbor:"3,keyasint,omitempty"`

	// Replies is the number of reply messages published.
	Replies int `cbor:"4,keyasint,omitempty"`
}

// GuardEvent records a watchdog state transition.
type GuardEvent struct {
	OldState string `cbor:"1,keyasint,omitempty"`
	NewState string `cbor:"2,keyasint"`
	Holder   string `cbor:"3,keyasint,omitempty"`
}

// PinEvent records a change to a hardware line.
type PinEvent struct {
	// Op is "configure", "write", "read" or "release".
	Op    string `cbor:"1,keyasint"`
	Name  string `cbor:"2,keyasint"`
	Line  int    `cbor:"3,keyasint"`
	Mode  string `cbor:"4,keyasint,omitempty"`
	Level string `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData captures errors.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
