package log

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects trace events. Zero fields match everything.
type Filter struct {
	NodeID    string
	Peer      string
	MessageID string
	Direction *Direction
	Category  *Category

	// TimeStart matches events at or after this time.
	TimeStart *time.Time

	// TimeEnd matches events before this time.
	TimeEnd *time.Time
}

// Match reports whether event passes every set criterion.
func (f Filter) Match(event Event) bool {
	switch {
	case f.NodeID != "" && event.NodeID != f.NodeID,
		f.Peer != "" && event.Peer != f.Peer,
		f.MessageID != "" && event.MessageID != f.MessageID:
		return false
	case f.Direction != nil && event.Direction != *f.Direction,
		f.Category != nil && event.Category != *f.Category:
		return false
	case f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart),
		f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	}
	return true
}

// Reader streams events from a trace, oldest first. When the trace was
// rotated, the previous generation (path + ".1") is read before path.
type Reader struct {
	files   []*os.File
	current int
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader opens a trace and reads every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens a trace and reads events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	head, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{filter: filter}
	if prev, err := os.Open(path + ".1"); err == nil {
		r.files = append(r.files, prev)
	}
	r.files = append(r.files, head)
	r.decoder = NewDecoder(r.files[0])
	return r, nil
}

// Next returns the next matching event, or io.EOF once every generation
// is exhausted. A truncated final event in a generation is skipped.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		err := r.decoder.Decode(&event)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if r.current+1 >= len(r.files) {
				return Event{}, io.EOF
			}
			r.current++
			r.decoder = NewDecoder(r.files[r.current])
			continue
		}
		if err != nil {
			return Event{}, err
		}
		if r.filter.Match(event) {
			return event, nil
		}
	}
}

// Close closes every opened generation.
func (r *Reader) Close() error {
	var errs []error
	for _, f := range r.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}
