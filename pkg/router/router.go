package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/rulebridge/rulebridge-go/pkg/engine"
	"github.com/rulebridge/rulebridge-go/pkg/guard"
	"github.com/rulebridge/rulebridge-go/pkg/log"
	"github.com/rulebridge/rulebridge-go/pkg/message"
	"github.com/rulebridge/rulebridge-go/pkg/transport"
)

// Defaults for Config.
const (
	DefaultDedupeSize     = 256
	DefaultDedupeTTL      = 2 * time.Minute
	DefaultPendingSize    = 128
	DefaultPendingTTL     = 30 * time.Second
	DefaultPublishTimeout = 5 * time.Second
)

// Output is the interpreter side the router installs its reply sink on.
// Implemented by engine.Environment.
type Output interface {
	AddRouter(name string, priority int, r engine.Router) error
	DeleteRouter(name string) bool
	Prompt() string
}

var _ Output = (*engine.Environment)(nil)

// Config configures a Router.
type Config struct {
	// NodeID is this node's identity.
	NodeID string

	// AlwaysReply publishes output even when the sender did not ask.
	AlwaysReply bool

	// DedupeSize and DedupeTTL bound the seen-message cache.
	DedupeSize int
	DedupeTTL  time.Duration

	// PendingSize and PendingTTL bound the outstanding-request cache.
	PendingSize int
	PendingTTL  time.Duration

	// PublishTimeout bounds each publish.
	PublishTimeout time.Duration

	// Logger for operational logging. Nil disables logging.
	Logger *slog.Logger

	// EventLogger receives the bridge trace. Nil disables tracing.
	EventLogger log.Logger
}

// Status classifies what happened to a payload.
type Status uint8

const (
	// StatusDropped means the payload was discarded; Err says why.
	StatusDropped Status = iota

	// StatusExecuted means the body ran through the interpreter.
	StatusExecuted

	// StatusIncomplete means the body was not a complete command and was
	// flushed.
	StatusIncomplete

	// StatusReply means the payload answered a request this node sent.
	StatusReply
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDropped:
		return "DROPPED"
	case StatusExecuted:
		return "EXECUTED"
	case StatusIncomplete:
		return "INCOMPLETE"
	case StatusReply:
		return "REPLY"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the result of one Dispatch.
type Outcome struct {
	Status     Status
	Err        error
	Message    *message.Message
	Completion engine.Completion
	Replies    int
}

// Stats holds router counters.
type Stats struct {
	Received        uint64
	Malformed       uint64
	Incomplete      uint64
	Self            uint64
	NotAddressed    uint64
	Duplicate       uint64
	Busy            uint64
	Executed        uint64
	RepliesSent     uint64
	RepliesReceived uint64
	PublishErrors   uint64
}

// Router is the message router of one node.
type Router struct {
	cfg   Config
	guard *guard.Guard
	out   Output
	pub   transport.Publisher
	trace log.Logger

	seen    *expirable.LRU[string, struct{}]
	pending *expirable.LRU[string, string]

	mu      sync.RWMutex
	onReply func(*message.Message)

	received, malformed, incomplete, self, notAddressed atomic.Uint64
	duplicate, busy, executed, repliesSent              atomic.Uint64
	repliesReceived, publishErrors                      atomic.Uint64
}

// New creates a router.
func New(cfg Config, g *guard.Guard, out Output, pub transport.Publisher) *Router {
	if cfg.DedupeSize <= 0 {
		cfg.DedupeSize = DefaultDedupeSize
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = DefaultDedupeTTL
	}
	if cfg.PendingSize <= 0 {
		cfg.PendingSize = DefaultPendingSize
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = DefaultPendingTTL
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}

	return &Router{
		cfg:     cfg,
		guard:   g,
		out:     out,
		pub:     pub,
		trace:   log.OrNoop(cfg.EventLogger),
		seen:    expirable.NewLRU[string, struct{}](cfg.DedupeSize, nil, cfg.DedupeTTL),
		pending: expirable.NewLRU[string, string](cfg.PendingSize, nil, cfg.PendingTTL),
	}
}

// NodeID returns this node's identity.
func (r *Router) NodeID() string { return r.cfg.NodeID }

// OnReply sets the handler for replies to requests sent with Send.
func (r *Router) OnReply(fn func(*message.Message)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReply = fn
}

// Handler returns a transport.Handler dispatching under ctx. Replies
// published while handling a payload are abandoned once ctx ends.
func (r *Router) Handler(ctx context.Context) transport.Handler {
	return func(payload []byte) {
		r.Dispatch(ctx, payload)
	}
}

// Dispatch runs one payload through the pipeline.
func (r *Router) Dispatch(ctx context.Context, payload []byte) Outcome {
	r.received.Add(1)

	m, err := message.Decode(payload)
	if err != nil {
		r.malformed.Add(1)
		r.logWarn("discarding malformed payload", "error", err, "size", len(payload))
		r.traceError("decode", err)
		return Outcome{Status: StatusDropped, Err: err}
	}
	if err := m.Validate(); err != nil {
		r.incomplete.Add(1)
		r.logWarn("discarding incomplete message", "error", err, "src", m.Src, "msg_id", m.ID)
		r.traceDrop(m, err)
		return Outcome{Status: StatusDropped, Err: err, Message: m}
	}
	if m.Src == r.cfg.NodeID {
		r.self.Add(1)
		return Outcome{Status: StatusDropped, Err: ErrSelfMessage, Message: m}
	}
	if !m.AddressedTo(r.cfg.NodeID) {
		r.notAddressed.Add(1)
		r.debugLog("message not addressed to this node", "dst", m.Dst, "src", m.Src, "msg_id", m.ID)
		return Outcome{Status: StatusDropped, Err: ErrNotAddressedToMe, Message: m}
	}

	r.traceMessage(log.DirectionIn, log.CategoryMessage, m)

	if m.Dst == r.cfg.NodeID && r.pending.Contains(m.ID) {
		return r.deliverReply(m)
	}

	key := m.Src + "\x00" + m.ID
	if r.seen.Contains(key) {
		r.duplicate.Add(1)
		r.debugLog("duplicate message", "src", m.Src, "msg_id", m.ID)
		r.traceDrop(m, ErrDuplicate)
		return Outcome{Status: StatusDropped, Err: ErrDuplicate, Message: m}
	}

	session, ok := r.guard.TryAcquire(guard.SourceNetwork)
	if !ok {
		r.busy.Add(1)
		r.logWarn("interpreter busy, dropping message", "src", m.Src, "msg_id", m.ID)
		r.traceDrop(m, ErrBusy)
		return Outcome{Status: StatusDropped, Err: ErrBusy, Message: m}
	}
	defer session.Release()
	r.seen.Add(key, struct{}{})

	return r.execute(ctx, session, m)
}

func (r *Router) execute(ctx context.Context, session *guard.Session, m *message.Message) Outcome {
	start := time.Now()
	out := Outcome{Status: StatusExecuted, Message: m}

	var (
		sink  *replySink
		reply *ReplyContext
	)
	if bool(m.ReplyMe) || r.cfg.AlwaysReply {
		sink = &replySink{}
		if err := r.out.AddRouter(SinkRouterName, SinkPriority, sink); err != nil {
			r.logWarn("reply sink unavailable", "error", err, "msg_id", m.ID)
			sink = nil
		} else {
			defer r.out.DeleteRouter(SinkRouterName)
			reply = &ReplyContext{Recipient: m.Src, CorrelationID: m.ID, Publisher: r.pub}
		}
	}

	session.Feed(normalize(m.Body))
	out.Completion = session.ExecuteIfComplete()
	if out.Completion == engine.NotComplete {
		session.Flush()
		out.Status = StatusIncomplete
		out.Err = ErrIncompleteCommand
		if sink != nil {
			sink.add(ErrIncompleteCommand.Error())
		}
	} else {
		r.executed.Add(1)
	}

	if sink != nil {
		out.Replies = r.flush(ctx, reply, m, sink.replies(r.out.Prompt()))
	}

	r.trace.Log(log.Event{
		Timestamp: time.Now(),
		NodeID:    r.cfg.NodeID,
		Direction: log.DirectionLocal,
		Category:  log.CategoryExecution,
		Peer:      m.Src,
		MessageID: m.ID,
		Execution: &log.ExecutionEvent{
			Source:     guard.SourceNetwork.String(),
			Completion: out.Completion.String(),
			Duration:   time.Since(start),
			Replies:    out.Replies,
		},
	})
	r.debugLog("network command executed", "src", m.Src, "msg_id", m.ID,
		"completion", out.Completion.String(), "replies", out.Replies)
	return out
}

// flush publishes one reply to req per chunk and returns how many were sent.
func (r *Router) flush(ctx context.Context, rc *ReplyContext, req *message.Message, chunks []string) int {
	if rc.Recipient == r.cfg.NodeID {
		return 0
	}
	sent := 0
	for _, body := range chunks {
		if err := r.publish(ctx, rc.Publisher, req.Reply(r.cfg.NodeID, body), log.CategoryReply); err != nil {
			continue
		}
		r.repliesSent.Add(1)
		sent++
	}
	return sent
}

// Send publishes a message from this node and returns its correlation id.
// When replyMe is set, replies carrying the id are routed to the OnReply
// handler instead of being executed.
func (r *Router) Send(ctx context.Context, dst, body string, replyMe bool) (string, error) {
	m := message.New(r.cfg.NodeID, dst, body, replyMe)
	if err := m.Validate(); err != nil {
		return "", err
	}
	if replyMe {
		r.pending.Add(m.ID, dst)
	}
	if err := r.publish(ctx, r.pub, m, log.CategoryMessage); err != nil {
		r.pending.Remove(m.ID)
		return "", err
	}
	return m.ID, nil
}

func (r *Router) publish(ctx context.Context, pub transport.Publisher, m *message.Message, cat log.Category) error {
	payload, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.PublishTimeout)
	defer cancel()

	if err := pub.Publish(ctx, payload); err != nil {
		r.publishErrors.Add(1)
		if r.cfg.Logger != nil {
			r.cfg.Logger.Error("publish failed", "dst", m.Dst, "msg_id", m.ID, "error", err)
		}
		r.traceError("publish", err)
		return err
	}
	r.traceMessage(log.DirectionOut, cat, m)
	return nil
}

func (r *Router) deliverReply(m *message.Message) Outcome {
	r.repliesReceived.Add(1)

	r.mu.RLock()
	fn := r.onReply
	r.mu.RUnlock()

	r.traceMessage(log.DirectionIn, log.CategoryReply, m)
	if fn != nil {
		fn(m)
	}
	return Outcome{Status: StatusReply, Message: m}
}

// Pending reports whether id is an outstanding request.
func (r *Router) Pending(id string) bool {
	return r.pending.Contains(id)
}

// Stats returns a snapshot of the counters.
func (r *Router) Stats() Stats {
	return Stats{
		Received:        r.received.Load(),
		Malformed:       r.malformed.Load(),
		Incomplete:      r.incomplete.Load(),
		Self:            r.self.Load(),
		NotAddressed:    r.notAddressed.Load(),
		Duplicate:       r.duplicate.Load(),
		Busy:            r.busy.Load(),
		Executed:        r.executed.Load(),
		RepliesSent:     r.repliesSent.Load(),
		RepliesReceived: r.repliesReceived.Load(),
		PublishErrors:   r.publishErrors.Load(),
	}
}

func (r *Router) traceMessage(dir log.Direction, cat log.Category, m *message.Message) {
	peer := m.Src
	if dir == log.DirectionOut {
		peer = m.Dst
	}
	r.trace.Log(log.Event{
		Timestamp: time.Now(),
		NodeID:    r.cfg.NodeID,
		Direction: dir,
		Category:  cat,
		Peer:      peer,
		MessageID: m.ID,
		Message:   log.NewMessageEvent(m.Src, m.Dst, m.Body, bool(m.ReplyMe)),
	})
}

func (r *Router) traceDrop(m *message.Message, reason error) {
	r.trace.Log(log.Event{
		Timestamp: time.Now(),
		NodeID:    r.cfg.NodeID,
		Direction: log.DirectionIn,
		Category:  log.CategoryDrop,
		Peer:      m.Src,
		MessageID: m.ID,
		Drop:      &log.DropEvent{Reason: reason.Error()},
	})
}

func (r *Router) traceError(op string, err error) {
	r.trace.Log(log.Event{
		Timestamp: time.Now(),
		NodeID:    r.cfg.NodeID,
		Direction: log.DirectionIn,
		Category:  log.CategoryError,
		Error:     &log.ErrorEventData{Message: err.Error(), Context: op},
	})
}

func (r *Router) logWarn(msg string, args ...any) {
	if r.cfg.Logger != nil {
		r.cfg.Logger.Warn(msg, args...)
	}
}

func (r *Router) debugLog(msg string, args ...any) {
	if r.cfg.Logger != nil {
		r.cfg.Logger.Debug(msg, args...)
	}
}
