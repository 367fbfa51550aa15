package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rulebridge/rulebridge-go/pkg/engine"
	"github.com/rulebridge/rulebridge-go/pkg/guard"
)

// Console errors.
var (
	ErrInterrupt = errors.New("interrupted")
	ErrBusy      = errors.New("interpreter busy, input dropped")
)

// Output router registration.
const (
	RouterName     = "console"
	RouterPriority = 10
)

// LineSource is where console input comes from and output goes to.
type LineSource interface {
	// ReadLine blocks for the next line without its terminator. It returns
	// ErrInterrupt on Ctrl-C and io.EOF when input ends.
	ReadLine() (string, error)

	// Writer is where output is printed.
	Writer() io.Writer

	Close() error
}

// Config configures a Console.
type Config struct {
	// Banner is printed when Run starts.
	Banner string

	// ShowPrompt prints the interpreter prompt chunk. Sources that draw
	// their own prompt (Terminal) leave it off.
	ShowPrompt bool

	// Logger for operational logging. Nil disables logging.
	Logger *slog.Logger
}

// Console feeds operator input to the interpreter.
type Console struct {
	src    LineSource
	guard  *guard.Guard
	prompt func() string
	cfg    Config

	writeMu sync.Mutex
	dropped atomic.Uint64
}

// New creates a console. prompt returns the current interpreter prompt.
func New(src LineSource, g *guard.Guard, prompt func() string, cfg Config) *Console {
	return &Console{src: src, guard: g, prompt: prompt, cfg: cfg}
}

// Router returns the output router to install on the interpreter.
func (c *Console) Router() engine.Router {
	return engine.RouterFunc(c.write)
}

func (c *Console) write(_, text string) {
	if !c.cfg.ShowPrompt && c.prompt != nil && text == c.prompt() {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, _ = io.WriteString(c.src.Writer(), text)
}

// Printf prints to the console outside the interpreter, e.g. replies from
// peers.
func (c *Console) Printf(format string, args ...any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, _ = fmt.Fprintf(c.src.Writer(), format, args...)
}

// Submit feeds one line to the interpreter. When the guard is held the line
// is dropped and ErrBusy returned.
func (c *Console) Submit(line string) (engine.Completion, error) {
	session, ok := c.guard.TryAcquire(guard.SourceConsole)
	if !ok {
		c.dropped.Add(1)
		if c.cfg.Logger != nil {
			c.cfg.Logger.Warn("interpreter busy, console input dropped", "holder", c.guard.Holder().String())
		}
		c.Printf("%v\n", ErrBusy)
		return engine.NotComplete, ErrBusy
	}
	defer session.Release()

	session.Feed(line + "\n")
	return session.ExecuteIfComplete(), nil
}

// Cancel discards a partially entered command.
func (c *Console) Cancel() bool {
	if !c.guard.Editing() {
		return false
	}
	session, ok := c.guard.TryAcquire(guard.SourceConsole)
	if !ok {
		return false
	}
	defer session.Release()
	session.Flush()
	return true
}

// Dropped returns how many lines were dropped because the guard was held.
func (c *Console) Dropped() uint64 {
	return c.dropped.Load()
}

// Run reads and submits lines until ctx ends or input is exhausted.
func (c *Console) Run(ctx context.Context) error {
	if c.cfg.Banner != "" {
		c.Printf("%s\n", c.cfg.Banner)
	}
	if c.cfg.ShowPrompt && c.prompt != nil {
		c.Printf("%s", c.prompt())
	}

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		for {
			line, err := c.src.ReadLine()
			if errors.Is(err, ErrInterrupt) {
				if c.Cancel() {
					c.Printf("^C\n")
				}
				continue
			}
			if err != nil {
				errs <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case line := <-lines:
			_, _ = c.Submit(line)
		}
	}
}

// Close closes the line source.
func (c *Console) Close() error {
	return c.src.Close()
}
