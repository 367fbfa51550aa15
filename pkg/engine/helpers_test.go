package engine

import (
	"strings"
	"sync"
)

type chunk struct {
	name string
	text string
}

type captureRouter struct {
	mu     sync.Mutex
	names  map[string]bool
	chunks []chunk
}

func newCapture(names ...string) *captureRouter {
	c := &captureRouter{names: make(map[string]bool)}
	for _, n := range names {
		c.names[n] = true
	}
	return c
}

func (c *captureRouter) Query(name string) bool {
	return len(c.names) == 0 || c.names[name]
}

func (c *captureRouter) Write(name, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, chunk{name, text})
}

func (c *captureRouter) text(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b strings.Builder
	for _, ch := range c.chunks {
		if ch.name == name {
			b.WriteString(ch.text)
		}
	}
	return b.String()
}

func newTestEnv() (*Environment, *captureRouter) {
	env := New(Config{})
	cap := newCapture()
	_ = env.AddRouter("capture", 10, cap)
	return env, cap
}

func run(env *Environment, cmd string) Completion {
	env.AppendCommand(cmd)
	return env.ExecuteIfComplete()
}
