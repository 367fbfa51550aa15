package console

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// Stream is a LineSource over a byte stream. Lines end at CR or LF and a
// CRLF pair counts once. Backspace and DEL erase the last character.
type Stream struct {
	r      *bufio.Reader
	w      io.Writer
	closer io.Closer
	echo   bool

	mu     sync.Mutex
	lastCR bool
}

var _ LineSource = (*Stream)(nil)

// NewStream creates a stream source. With echo set, received characters are
// written back, as a terminal emulator on a serial line expects.
func NewStream(r io.Reader, w io.Writer, echo bool) *Stream {
	s := &Stream{r: bufio.NewReader(r), w: w, echo: echo}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// ReadLine reads up to the next line terminator.
func (s *Stream) ReadLine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var line strings.Builder
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if line.Len() > 0 && err == io.EOF {
				return line.String(), nil
			}
			return "", err
		}

		switch b {
		case '\n':
			if s.lastCR {
				s.lastCR = false
				continue
			}
			s.emit("\r\n")
			return line.String(), nil
		case '\r':
			s.lastCR = true
			s.emit("\r\n")
			return line.String(), nil
		case 0x03:
			s.lastCR = false
			return "", ErrInterrupt
		case 0x08, 0x7f:
			s.lastCR = false
			if n := line.Len(); n > 0 {
				cur := line.String()
				line.Reset()
				line.WriteString(cur[:n-1])
				s.emit("\b \b")
			}
		default:
			s.lastCR = false
			line.WriteByte(b)
			s.emit(string(b))
		}
	}
}

func (s *Stream) emit(text string) {
	if s.echo {
		_, _ = io.WriteString(s.w, text)
	}
}

// Writer returns the output side.
func (s *Stream) Writer() io.Writer { return s.w }

// Close closes the input side if it is closable.
func (s *Stream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
