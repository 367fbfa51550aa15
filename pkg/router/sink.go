package router

import (
	"strings"
	"sync"

	"github.com/rulebridge/rulebridge-go/pkg/engine"
	"github.com/rulebridge/rulebridge-go/pkg/transport"
)

// Reply sink router registration.
const (
	SinkRouterName = "network-reply"
	SinkPriority   = 40
)

// ReplyContext binds one command cycle to the peer awaiting its output.
type ReplyContext struct {
	Recipient     string
	CorrelationID string
	Publisher     transport.Publisher
}

// replySink captures every interpreter write while installed.
type replySink struct {
	mu     sync.Mutex
	chunks []string
}

var _ engine.Router = (*replySink)(nil)

func (s *replySink) Query(string) bool { return true }

func (s *replySink) Write(_, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, text)
}

func (s *replySink) add(text string) {
	s.Write(engine.StdOut, text)
}

// replies returns the captured chunks that carry content. Prompts and
// whitespace-only chunks are structural and dropped; trailing line
// terminators are trimmed.
func (s *replySink) replies(prompt string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, c := range s.chunks {
		if c == prompt || strings.TrimSpace(c) == "" {
			continue
		}
		out = append(out, strings.TrimRight(c, "\r\n"))
	}
	return out
}

// normalize converts any line termination to \n and guarantees exactly one
// trailing newline so the interpreter sees a terminated command.
func normalize(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	return strings.TrimRight(body, "\n") + "\n"
}
