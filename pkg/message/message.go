package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Broadcast is the destination every node accepts.
const Broadcast = "ALL"

// Message errors.
var (
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrIncompleteMessage = errors.New("incomplete message")
)

// Flag is a boolean carried as the string "true" or "false" on the wire.
// Decoding also accepts JSON booleans; any other string is false.
type Flag bool

// MarshalJSON implements json.Marshaler.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte(`"true"`), nil
	}
	return []byte(`"false"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = false
		return nil
	case bytes.Equal(data, []byte("true")):
		*f = true
		return nil
	case bytes.Equal(data, []byte("false")):
		*f = false
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("reply_me must be a string or boolean: %s", data)
	}
	*f = Flag(strings.EqualFold(strings.TrimSpace(s), "true"))
	return nil
}

// Message is one network message.
type Message struct {
	Src     string `json:"src"`
	Dst     string `json:"dst"`
	Body    string `json:"msg"`
	ID      string `json:"msg_id"`
	ReplyMe Flag   `json:"reply_me"`
}

// New creates a message with a fresh correlation id.
func New(src, dst, body string, replyMe bool) *Message {
	return &Message{
		Src:     src,
		Dst:     dst,
		Body:    body,
		ID:      NewID(),
		ReplyMe: Flag(replyMe),
	}
}

// NewID returns a random correlation id.
func NewID() string {
	return uuid.NewString()
}

// Decode parses a wire payload. The message is not validated.
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &m, nil
}

// Encode serializes the message.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Validate checks that every field needed to act on the message is set.
func (m *Message) Validate() error {
	var missing []string
	if m.Src == "" {
		missing = append(missing, "src")
	}
	if m.Dst == "" {
		missing = append(missing, "dst")
	}
	if m.Body == "" {
		missing = append(missing, "msg")
	}
	if m.ID == "" {
		missing = append(missing, "msg_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteMessage, strings.Join(missing, ", "))
	}
	return nil
}

// AddressedTo reports whether a node with the id should process m.
func (m *Message) AddressedTo(id string) bool {
	return m.Dst == id || m.Dst == Broadcast
}

// IsBroadcast reports whether m is addressed to every node.
func (m *Message) IsBroadcast() bool {
	return m.Dst == Broadcast
}

// Reply builds the response sent by node from carrying body.
func (m *Message) Reply(from, body string) *Message {
	return &Message{
		Src:  from,
		Dst:  m.Src,
		Body: body,
		ID:   m.ID,
	}
}

// String returns a compact form for logs.
func (m *Message) String() string {
	return fmt.Sprintf("%s->%s id=%s reply=%t msg=%q", m.Src, m.Dst, m.ID, bool(m.ReplyMe), m.Body)
}
