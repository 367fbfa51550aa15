package guard

import (
	"strings"
	"sync"

	"github.com/rulebridge/rulebridge-go/pkg/engine"
)

type fakeInterp struct {
	mu       sync.Mutex
	buf      strings.Builder
	executed []string
	halts    int
	flushes  int
	block    chan struct{}
}

func (f *fakeInterp) AppendCommand(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf.WriteString(text)
}

func (f *fakeInterp) ExecuteIfComplete() engine.Completion {
	f.mu.Lock()
	cmd := f.buf.String()
	if !engine.IsComplete(cmd) {
		f.mu.Unlock()
		return engine.NotComplete
	}
	f.buf.Reset()
	f.executed = append(f.executed, cmd)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return engine.Completed
}

func (f *fakeInterp) FlushCommand() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	f.buf.Reset()
}

func (f *fakeInterp) Halt() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.halts++
}

func (f *fakeInterp) pending() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}

func (f *fakeInterp) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.executed)
}
