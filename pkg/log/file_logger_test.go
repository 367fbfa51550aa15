package log

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.rblog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("trace file was not created")
	}
	if logger.Path() != path {
		t.Errorf("Path() = %q, want %q", logger.Path(), path)
	}
}

func TestFileLoggerAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.rblog")

	for i, id := range []string{"m1", "m2"} {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		logger.Log(Event{Timestamp: time.Now(), NodeID: "node1", MessageID: id, Category: CategoryMessage})
		logger.Close()
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var ids []string
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		ids = append(ids, ev.MessageID)
	}
	if len(ids) != 2 || ids[0] != "m1" || ids[1] != "m2" {
		t.Errorf("ids = %v, want [m1 m2]", ids)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "node.rblog"))
	if err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	// Logging after close is ignored.
	logger.Log(Event{NodeID: "late"})
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.rblog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(Event{Timestamp: time.Now(), NodeID: "node1", Drop: &DropEvent{Reason: "busy"}, Category: CategoryDrop})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	r, _ := NewReader(path)
	defer r.Close()
	count := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		count++
	}
	if count != 200 {
		t.Errorf("read %d events, want 200", count)
	}
}

func TestFileLoggerRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.rblog")
	ev := Event{Timestamp: time.Now(), NodeID: "node1", Category: CategoryPin, Pin: &PinEvent{Op: "write", Name: "D5", Level: "HIGH"}}
	data, err := EncodeEvent(ev)
	if err != nil {
		t.Fatal(err)
	}

	// Rotate after every second event.
	logger, err := NewFileLogger(path, WithMaxSize(int64(2*len(data))))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		logger.Log(ev)
	}
	size, rotations, failures := logger.Stats()
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	if rotations != 2 || failures != 0 {
		t.Errorf("rotations = %d, failures = %d, want 2 and 0", rotations, failures)
	}
	if size != int64(len(data)) {
		t.Errorf("size = %d, want %d", size, len(data))
	}

	for file, want := range map[string]int{path: 1, path + ".1": 2} {
		f, err := os.Open(file)
		if err != nil {
			t.Fatal(err)
		}
		events, err := ReadEvents(f)
		f.Close()
		if err != nil {
			t.Fatalf("ReadEvents(%s): %v", file, err)
		}
		if len(events) != want {
			t.Errorf("%s holds %d events, want %d", file, len(events), want)
		}
	}
}

func TestFileLoggerResumesSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.rblog")
	first, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	first.Log(Event{NodeID: "node1"})
	size, _, _ := first.Stats()
	first.Close()

	second, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	if got, _, _ := second.Stats(); got != size || size == 0 {
		t.Errorf("reopened size = %d, want %d", got, size)
	}
}

func TestReadEventsToleratesTruncation(t *testing.T) {
	a, _ := EncodeEvent(Event{NodeID: "node1", MessageID: "m1"})
	b, _ := EncodeEvent(Event{NodeID: "node1", MessageID: "m2"})
	stream := append(append([]byte{}, a...), b[:len(b)/2]...)

	events, err := ReadEvents(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 1 || events[0].MessageID != "m1" {
		t.Errorf("events = %+v, want only m1", events)
	}
}
