package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rulebridge/rulebridge-go/pkg/console"
	"github.com/rulebridge/rulebridge-go/pkg/discovery"
	"github.com/rulebridge/rulebridge-go/pkg/engine"
	"github.com/rulebridge/rulebridge-go/pkg/guard"
	"github.com/rulebridge/rulebridge-go/pkg/log"
	"github.com/rulebridge/rulebridge-go/pkg/message"
	"github.com/rulebridge/rulebridge-go/pkg/pin"
	"github.com/rulebridge/rulebridge-go/pkg/router"
	"github.com/rulebridge/rulebridge-go/pkg/transport"
)

// Node errors.
var (
	ErrMissingTransport = errors.New("node requires a transport")
	ErrMissingDriver    = errors.New("node requires a GPIO driver")
	ErrAlreadyStarted   = errors.New("node already started")
)

// Config configures a Node.
type Config struct {
	// NodeID is the validated node identity.
	NodeID string

	// Prompt is the interpreter prompt. Empty uses engine.DefaultPrompt.
	Prompt string

	// AlwaysReply publishes command output even without reply_me.
	AlwaysReply bool

	// GuardTimeout is the intake watchdog timeout. Zero disables it.
	GuardTimeout time.Duration

	// Table maps pin names to lines; Driver performs the hardware access.
	Table  pin.Table
	Driver pin.Driver

	// Transport carries messages between nodes.
	Transport transport.Transport

	// Console is the optional local line source.
	Console console.LineSource

	// ShowPrompt prints the prompt on the console. Sources drawing their own
	// prompt leave it off.
	ShowPrompt bool

	// Banner is printed when the console starts.
	Banner string

	// Presence advertises the node while it runs. Optional.
	Presence *discovery.Presence

	// Logger for operational logging. Nil disables logging.
	Logger *slog.Logger

	// EventLogger receives the bridge trace. Nil disables tracing.
	EventLogger log.Logger
}

// Node is one running bridge node.
type Node struct {
	cfg   Config
	trace log.Logger

	env      *engine.Environment
	registry *pin.Registry
	mediator *pin.Mediator
	guard    *guard.Guard
	router   *router.Router
	console  *console.Console

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool

	exitOnce sync.Once
	exit     chan struct{}
}

// New assembles a node. Nothing is connected until Start.
func New(cfg Config) (*Node, error) {
	if cfg.Transport == nil {
		return nil, ErrMissingTransport
	}
	if cfg.Driver == nil {
		return nil, ErrMissingDriver
	}

	n := &Node{
		cfg:   cfg,
		trace: log.OrNoop(cfg.EventLogger),
		ctx:   context.Background(),
		exit:  make(chan struct{}),
	}

	n.env = engine.New(engine.Config{Prompt: cfg.Prompt, Logger: cfg.Logger})
	n.registry = pin.NewRegistry(cfg.Table, cfg.Driver, cfg.Logger)
	n.mediator = pin.NewMediator(n.registry, n.env, cfg.Logger)
	n.env.OnDelete(pin.ClassPin, n.releasePin)

	n.guard = guard.New(n.env, guard.Config{
		Timeout:  cfg.GuardTimeout,
		Logger:   cfg.Logger,
		OnExpire: n.onWatchdogExpire,
	})
	n.guard.Watchdog().OnStateChange(n.onWatchdogState)

	n.router = router.New(router.Config{
		NodeID:      cfg.NodeID,
		AlwaysReply: cfg.AlwaysReply,
		Logger:      cfg.Logger,
		EventLogger: cfg.EventLogger,
	}, n.guard, n.env, cfg.Transport)
	n.router.OnReply(n.onReply)

	if cfg.Console != nil {
		n.console = console.New(cfg.Console, n.guard, n.env.Prompt, console.Config{
			Banner:     cfg.Banner,
			ShowPrompt: cfg.ShowPrompt,
			Logger:     cfg.Logger,
		})
		if err := n.env.AddRouter(console.RouterName, console.RouterPriority, n.console.Router()); err != nil {
			return nil, err
		}
	}

	n.defineBuiltins()
	return n, nil
}

// ID returns the node identity.
func (n *Node) ID() string { return n.cfg.NodeID }

// Env returns the interpreter environment.
func (n *Node) Env() *engine.Environment { return n.env }

// Registry returns the pin registry.
func (n *Node) Registry() *pin.Registry { return n.registry }

// Guard returns the intake guard.
func (n *Node) Guard() *guard.Guard { return n.guard }

// Router returns the message router.
func (n *Node) Router() *router.Router { return n.router }

// Console returns the console, or nil.
func (n *Node) Console() *console.Console { return n.console }

// Exited is closed when a console operator runs (exit).
func (n *Node) Exited() <-chan struct{} { return n.exit }

// Start subscribes, connects the transport and advertises the node.
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	if n.started {
		n.mu.Unlock()
		return ErrAlreadyStarted
	}
	n.started = true
	runCtx, cancel := context.WithCancel(ctx)
	n.ctx, n.cancel = runCtx, cancel
	n.mu.Unlock()

	n.cfg.Transport.Subscribe(n.router.Handler(runCtx))
	if err := n.cfg.Transport.Connect(ctx); err != nil {
		return fmt.Errorf("connect transport: %w", err)
	}

	if n.cfg.Presence != nil {
		if err := n.cfg.Presence.Start(ctx); err != nil {
			n.logWarn("mDNS advertisement failed", "error", err)
		}
	}

	n.logInfo("node started", "node", n.cfg.NodeID)
	return nil
}

// Run starts the node and blocks until ctx ends, the console input ends or
// an operator exits. The node is stopped on return.
func (n *Node) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := n.Start(ctx); err != nil {
		return err
	}
	defer n.Stop()

	consoleDone := make(chan error, 1)
	if n.console != nil {
		go func() { consoleDone <- n.console.Run(ctx) }()
	}

	select {
	case <-ctx.Done():
		return nil
	case <-n.exit:
		return nil
	case err := <-consoleDone:
		return err
	}
}

// Stop abandons in-flight publishes, withdraws the advertisement, closes the
// transport and console, and releases every configured pin.
func (n *Node) Stop() error {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	n.mu.Unlock()

	var errs []error

	if n.cfg.Presence != nil {
		errs = append(errs, n.cfg.Presence.Stop())
	}
	errs = append(errs, n.cfg.Transport.Close())
	n.guard.Close()

	for _, rec := range n.registry.Records() {
		errs = append(errs, n.mediator.Teardown(rec.Name))
	}

	if n.console != nil {
		errs = append(errs, n.console.Close())
	}

	n.logInfo("node stopped", "node", n.cfg.NodeID)
	return errors.Join(errs...)
}

// Send publishes a command to another node. It is the programmatic form of
// the mqtt-publish builtin.
func (n *Node) Send(ctx context.Context, dst, body string, replyMe bool) (string, error) {
	return n.router.Send(ctx, dst, body, replyMe)
}

func (n *Node) context() context.Context {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ctx
}

func (n *Node) releasePin(name string) error {
	rec, ok := n.registry.Record(name)
	if err := n.mediator.Teardown(name); err != nil {
		return err
	}
	if ok {
		n.tracePin("release", rec.Name, rec.Line, "", "")
	}
	return nil
}

func (n *Node) onReply(m *message.Message) {
	n.logDebug("reply received", "src", m.Src, "msg_id", m.ID)
	if n.console != nil {
		n.console.Printf("[%s] %s\n", m.Src, m.Body)
	}
}

func (n *Node) onWatchdogExpire(holder guard.Source) {
	n.trace.Log(log.Event{
		Timestamp: time.Now(),
		NodeID:    n.cfg.NodeID,
		Direction: log.DirectionLocal,
		Category:  log.CategoryGuard,
		Guard: &log.GuardEvent{
			NewState: "RECOVERED",
			Holder:   holder.String(),
		},
	})
}

func (n *Node) onWatchdogState(oldState, newState guard.WatchdogState) {
	if newState != guard.WatchdogExpired {
		return
	}
	n.trace.Log(log.Event{
		Timestamp: time.Now(),
		NodeID:    n.cfg.NodeID,
		Direction: log.DirectionLocal,
		Category:  log.CategoryGuard,
		Guard: &log.GuardEvent{
			OldState: oldState.String(),
			NewState: newState.String(),
			Holder:   n.guard.Holder().String(),
		},
	})
}

func (n *Node) tracePin(op, name string, line pin.Line, mode, level string) {
	n.trace.Log(log.Event{
		Timestamp: time.Now(),
		NodeID:    n.cfg.NodeID,
		Direction: log.DirectionLocal,
		Category:  log.CategoryPin,
		Pin: &log.PinEvent{
			Op:    op,
			Name:  name,
			Line:  int(line),
			Mode:  mode,
			Level: level,
		},
	})
}

func (n *Node) logInfo(msg string, args ...any) {
	if n.cfg.Logger != nil {
		n.cfg.Logger.Info(msg, args...)
	}
}

func (n *Node) logWarn(msg string, args ...any) {
	if n.cfg.Logger != nil {
		n.cfg.Logger.Warn(msg, args...)
	}
}

func (n *Node) logDebug(msg string, args ...any) {
	if n.cfg.Logger != nil {
		n.cfg.Logger.Debug(msg, args...)
	}
}
