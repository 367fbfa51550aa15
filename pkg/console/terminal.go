package console

import (
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// Terminal is a readline LineSource for interactive use on a TTY.
type Terminal struct {
	rl *readline.Instance
}

var _ LineSource = (*Terminal)(nil)

// NewTerminal creates a readline terminal.
func NewTerminal(prompt, historyFile string) (*Terminal, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Terminal{rl: rl}, nil
}

// ReadLine reads one line.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupt
	}
	if err != nil {
		return "", io.EOF
	}
	return line, nil
}

// Writer returns a writer that coordinates with the input line. Use it for
// log output so records don't interfere with the prompt.
func (t *Terminal) Writer() io.Writer { return t.rl.Stdout() }

// Close restores the terminal.
func (t *Terminal) Close() error { return t.rl.Close() }
