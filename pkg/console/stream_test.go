package console

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func ioPipe() (*io.PipeReader, *io.PipeWriter) { return io.Pipe() }

func readAll(t *testing.T, s *Stream) []string {
	t.Helper()
	var lines []string
	for {
		line, err := s.ReadLine()
		if err == io.EOF {
			return lines
		}
		if err != nil {
			t.Fatalf("ReadLine() error = %v", err)
		}
		lines = append(lines, line)
	}
}

func TestStreamLineTerminators(t *testing.T) {
	s := NewStream(strings.NewReader("a\r\nb\rc\nd\n\ne"), io.Discard, false)

	got := readAll(t, s)
	want := []string{"a", "b", "c", "d", "", "e"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStreamBackspace(t *testing.T) {
	s := NewStream(strings.NewReader("(pinn\x7f-mode\x08e)\r"), io.Discard, false)

	line, err := s.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if line != "(pin-mode)" {
		t.Errorf("got %q, want %q", line, "(pin-mode)")
	}
}

func TestStreamInterrupt(t *testing.T) {
	s := NewStream(strings.NewReader("abc\x03def\n"), io.Discard, false)

	if _, err := s.ReadLine(); !errors.Is(err, ErrInterrupt) {
		t.Fatalf("got %v, want ErrInterrupt", err)
	}
	line, err := s.ReadLine()
	if err != nil || line != "def" {
		t.Errorf("got %q, %v; want %q", line, err, "def")
	}
}

func TestStreamEcho(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader("ab\x7fc\r"), &out, true)

	if _, err := s.ReadLine(); err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if got, want := out.String(), "ab\b \bc\r\n"; got != want {
		t.Errorf("echo = %q, want %q", got, want)
	}
}

func TestStreamCloseClosesReader(t *testing.T) {
	pr, pw := io.Pipe()
	s := NewStream(pr, io.Discard, false)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := pw.Write([]byte("x")); err == nil {
		t.Error("write after reader close should fail")
	}
}
