package guard

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rulebridge/rulebridge-go/pkg/engine"
)

// Source identifies who is feeding the interpreter.
type Source uint32

const (
	SourceNone Source = iota
	SourceConsole
	SourceNetwork
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceConsole:
		return "console"
	case SourceNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Interpreter is the part of the engine the guard drives.
// Implemented by engine.Environment.
type Interpreter interface {
	AppendCommand(text string)
	ExecuteIfComplete() engine.Completion
	FlushCommand()
	Halt()
}

var _ Interpreter = (*engine.Environment)(nil)

// Config configures a Guard.
type Config struct {
	// Timeout is the watchdog window. Zero disables the watchdog.
	Timeout time.Duration

	// Logger for guard events. Nil disables logging.
	Logger *slog.Logger

	// OnExpire is called after the watchdog has recovered the interpreter.
	OnExpire func(holder Source)
}

// Stats holds guard counters.
type Stats struct {
	Acquired uint64
	Dropped  uint64
	Expired  uint64
}

// Guard is the command intake guard.
type Guard struct {
	interp Interpreter

	busy    atomic.Bool
	editing atomic.Bool
	holder  atomic.Uint32

	watchdog *Watchdog
	onExpire func(Source)
	logger   *slog.Logger

	acquired atomic.Uint64
	dropped  atomic.Uint64
	expired  atomic.Uint64
}

// New creates a guard in front of interp.
func New(interp Interpreter, cfg Config) *Guard {
	g := &Guard{
		interp:   interp,
		watchdog: NewWatchdog(cfg.Timeout),
		onExpire: cfg.OnExpire,
		logger:   cfg.Logger,
	}
	g.watchdog.OnExpire(g.recover)
	return g
}

// TryAcquire attempts to start a session for src without blocking.
func (g *Guard) TryAcquire(src Source) (*Session, bool) {
	if src == SourceNetwork && g.editing.Load() {
		g.dropped.Add(1)
		return nil, false
	}
	if !g.busy.CompareAndSwap(false, true) {
		g.dropped.Add(1)
		return nil, false
	}
	// The console may have left a partial command between the check above
	// and the swap.
	if src == SourceNetwork && g.editing.Load() {
		g.busy.Store(false)
		g.dropped.Add(1)
		return nil, false
	}

	g.holder.Store(uint32(src))
	g.acquired.Add(1)
	g.watchdog.Arm()
	return &Session{guard: g, source: src}, true
}

// Busy reports whether a session is active.
func (g *Guard) Busy() bool { return g.busy.Load() }

// Editing reports whether a partial console command is pending.
func (g *Guard) Editing() bool { return g.editing.Load() }

// Holder returns the source of the active session, or SourceNone.
func (g *Guard) Holder() Source {
	if !g.busy.Load() {
		return SourceNone
	}
	return Source(g.holder.Load())
}

// Watchdog returns the guard's watchdog.
func (g *Guard) Watchdog() *Watchdog { return g.watchdog }

// Stats returns a snapshot of the counters.
func (g *Guard) Stats() Stats {
	return Stats{
		Acquired: g.acquired.Load(),
		Dropped:  g.dropped.Load(),
		Expired:  g.expired.Load(),
	}
}

// Close stops the watchdog.
func (g *Guard) Close() {
	g.watchdog.Disarm()
}

func (g *Guard) recover() {
	holder := Source(g.holder.Load())
	if !g.busy.Load() {
		holder = SourceNone
	}

	g.interp.Halt()
	g.interp.FlushCommand()
	g.editing.Store(false)
	g.expired.Add(1)

	if g.logger != nil {
		g.logger.Warn("command watchdog expired, pending input discarded",
			"holder", holder.String(),
			"timeout", g.watchdog.Timeout())
	}
	if g.onExpire != nil {
		g.onExpire(holder)
	}
}

// Session is one acquired slot of the guard. Release must be called on
// every path, typically with defer.
type Session struct {
	guard    *Guard
	source   Source
	released atomic.Bool
}

// Source returns who acquired the session.
func (s *Session) Source() Source { return s.source }

// Feed appends text to the interpreter command buffer.
func (s *Session) Feed(text string) {
	s.guard.interp.AppendCommand(text)
}

// ExecuteIfComplete runs the buffered command if complete. A console
// session that leaves an incomplete command sets the editing flag.
func (s *Session) ExecuteIfComplete() engine.Completion {
	c := s.guard.interp.ExecuteIfComplete()
	if c == engine.NotComplete {
		if s.source == SourceConsole {
			s.guard.editing.Store(true)
		}
	} else {
		s.guard.editing.Store(false)
	}
	return c
}

// Flush discards the pending command buffer and clears editing.
func (s *Session) Flush() {
	s.guard.interp.FlushCommand()
	s.guard.editing.Store(false)
}

// Release ends the session. It is idempotent. The watchdog keeps running
// while a partial console command is pending.
func (s *Session) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	g := s.guard
	if !g.editing.Load() {
		g.watchdog.Disarm()
	}
	g.holder.Store(uint32(SourceNone))
	g.busy.Store(false)
}
