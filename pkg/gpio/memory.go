package gpio

import (
	"sync"

	"github.com/rulebridge/rulebridge-go/pkg/pin"
)

// LineState is the simulated state of one line.
type LineState struct {
	Mode       pin.Mode
	Level      pin.Level
	Configured bool
}

// Memory is an in-memory loopback driver.
type Memory struct {
	mu         sync.Mutex
	lines      map[pin.Line]*LineState
	failNext   error
	configures int
	resets     int
}

var _ pin.Driver = (*Memory)(nil)

// NewMemory creates an empty loopback driver.
func NewMemory() *Memory {
	return &Memory{lines: make(map[pin.Line]*LineState)}
}

func (m *Memory) line(l pin.Line) *LineState {
	s, ok := m.lines[l]
	if !ok {
		s = &LineState{}
		m.lines[l] = s
	}
	return s
}

func (m *Memory) takeFail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

// Configure records the mode. Pull-ups float high and pull-downs float low
// until stimulus is applied.
func (m *Memory) Configure(l pin.Line, mode pin.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFail(); err != nil {
		return err
	}
	m.configures++

	s := m.line(l)
	s.Mode = mode
	s.Configured = true
	switch mode {
	case pin.ModeInputPullUp, pin.ModeOpenDrain:
		s.Level = pin.High
	case pin.ModeInputPullDown:
		s.Level = pin.Low
	}
	return nil
}

// Read returns the latched level.
func (m *Memory) Read(l pin.Line) (pin.Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFail(); err != nil {
		return pin.Low, err
	}
	return m.line(l).Level, nil
}

// Write latches the level on the line.
func (m *Memory) Write(l pin.Line, level pin.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFail(); err != nil {
		return err
	}
	m.line(l).Level = level
	return nil
}

// Reset returns the line to an unconfigured floating input.
func (m *Memory) Reset(l pin.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFail(); err != nil {
		return err
	}
	m.resets++
	s := m.line(l)
	s.Mode = pin.ModeInput
	s.Configured = false
	return nil
}

// SetInput applies external stimulus to a line.
func (m *Memory) SetInput(l pin.Line, level pin.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.line(l).Level = level
}

// FailNext makes the next driver call return err.
func (m *Memory) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// State returns a copy of the line state.
func (m *Memory) State(l pin.Line) LineState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.line(l)
}

// Configures returns how many times Configure succeeded.
func (m *Memory) Configures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configures
}

// Resets returns how many times Reset succeeded.
func (m *Memory) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}
