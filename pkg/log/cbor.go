package log

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// traceCodec holds the CBOR modes shared by writers and readers of trace
// files. Encoding is canonical so identical events produce identical bytes.
var traceCodec = mustCodec()

type codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func mustCodec() codec {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: trace encoder: %v", err))
	}

	// Older traces may repeat keys or use indefinite lengths; tolerate both.
	dec, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: trace decoder: %v", err))
	}
	return codec{enc: enc, dec: dec}
}

// EncodeEvent returns the CBOR form of a single event.
func EncodeEvent(event Event) ([]byte, error) {
	return traceCodec.enc.Marshal(event)
}

// DecodeEvent parses one CBOR-encoded event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	err := traceCodec.dec.Unmarshal(data, &event)
	return event, err
}

// NewEncoder returns a stream encoder for trace events.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return traceCodec.enc.NewEncoder(w)
}

// NewDecoder returns a stream decoder for trace events.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return traceCodec.dec.NewDecoder(r)
}

// ReadEvents decodes every event in r. A truncated trailing event, as left
// by a node that lost power mid-write, ends the stream without error.
func ReadEvents(r io.Reader) ([]Event, error) {
	dec := NewDecoder(r)
	var events []Event
	for {
		var event Event
		err := dec.Decode(&event)
		switch {
		case err == nil:
			events = append(events, event)
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return events, nil
		default:
			return events, err
		}
	}
}
