package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultPrompt is printed after every executed command.
const DefaultPrompt = "rules> "

// ErrHalted is returned when an evaluation is stopped by Halt.
var ErrHalted = errors.New("evaluation halted")

// Completion is the result of ExecuteIfComplete.
type Completion uint8

const (
	// NotComplete means the buffer does not yet hold a complete command.
	NotComplete Completion = iota

	// Completed means the command ran without error.
	Completed

	// CompletedWithError means the command ran and reported an error.
	CompletedWithError
)

// String returns the completion name.
func (c Completion) String() string {
	switch c {
	case NotComplete:
		return "NOT_COMPLETE"
	case Completed:
		return "COMPLETED"
	case CompletedWithError:
		return "COMPLETED_WITH_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Config configures an Environment.
type Config struct {
	// Prompt printed to stdout after each command. Empty uses DefaultPrompt.
	Prompt string

	// Logger for debug output. Nil disables logging.
	Logger *slog.Logger
}

// Environment is one interpreter instance.
type Environment struct {
	bufMu  sync.Mutex
	buffer strings.Builder
	prompt string

	routerMu  sync.RWMutex
	routers   []routerEntry
	routerSeq int

	functions map[string]*Function

	instMu      sync.RWMutex
	instances   map[string]*Instance
	instSeq     int
	deleteHooks map[string][]DeleteHook

	halted atomic.Bool
	logger *slog.Logger
}

// New creates an environment with the core builtins defined.
func New(cfg Config) *Environment {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	e := &Environment{
		prompt:      prompt,
		functions:   make(map[string]*Function),
		instances:   make(map[string]*Instance),
		deleteHooks: make(map[string][]DeleteHook),
		logger:      cfg.Logger,
	}
	defineCoreFunctions(e)
	return e
}

// Prompt returns the prompt string.
func (e *Environment) Prompt() string {
	e.bufMu.Lock()
	defer e.bufMu.Unlock()
	return e.prompt
}

// SetPrompt changes the prompt string.
func (e *Environment) SetPrompt(p string) {
	e.bufMu.Lock()
	defer e.bufMu.Unlock()
	e.prompt = p
}

// AppendCommand appends text to the command buffer.
func (e *Environment) AppendCommand(text string) {
	e.bufMu.Lock()
	defer e.bufMu.Unlock()
	e.buffer.WriteString(text)
}

// CommandString returns the pending command buffer.
func (e *Environment) CommandString() string {
	e.bufMu.Lock()
	defer e.bufMu.Unlock()
	return e.buffer.String()
}

// FlushCommand discards the pending command buffer.
func (e *Environment) FlushCommand() {
	e.bufMu.Lock()
	defer e.bufMu.Unlock()
	e.buffer.Reset()
}

// Halt stops the running evaluation at the next function boundary.
func (e *Environment) Halt() {
	e.halted.Store(true)
}

// ExecuteIfComplete runs the buffered command if it is complete. Each
// non-void top-level result is echoed to stdout and the prompt is printed
// afterwards. An incomplete buffer is left untouched.
func (e *Environment) ExecuteIfComplete() Completion {
	e.bufMu.Lock()
	cmd := e.buffer.String()
	if !IsComplete(cmd) {
		e.bufMu.Unlock()
		return NotComplete
	}
	e.buffer.Reset()
	prompt := e.prompt
	e.bufMu.Unlock()

	result := e.execute(cmd)
	e.Write(StdOut, prompt)
	return result
}

func (e *Environment) execute(cmd string) Completion {
	e.halted.Store(false)

	exprs, err := Parse(cmd)
	if err != nil {
		e.printError(&EvalError{Tag: "PARSE", Err: err})
		return CompletedWithError
	}

	for _, x := range exprs {
		v, err := e.eval(x)
		if err != nil {
			e.printError(err)
			e.debugLog("command failed", "command", x.String(), "error", err)
			return CompletedWithError
		}
		if !v.IsVoid() {
			e.Write(StdOut, v.String())
			e.Write(StdOut, "\n")
		}
	}
	return Completed
}

// Eval evaluates src without touching the command buffer, echoing or
// printing the prompt. The result of the last expression is returned.
func (e *Environment) Eval(src string) (Value, error) {
	exprs, err := Parse(src)
	if err != nil {
		return Void(), &EvalError{Tag: "PARSE", Err: err}
	}
	result := Void()
	for _, x := range exprs {
		if result, err = e.eval(x); err != nil {
			return Void(), err
		}
	}
	return result, nil
}

func (e *Environment) eval(x Expr) (Value, error) {
	if e.halted.Load() {
		return Void(), &EvalError{Tag: "EXEC", Err: ErrHalted}
	}
	if !x.IsList {
		return x.Atom, nil
	}
	if len(x.List) == 0 {
		return Void(), &EvalError{Tag: "EXPRNPSR", Err: fmt.Errorf("%w: empty expression", ErrSyntax)}
	}

	head := x.List[0]
	if head.IsList || head.Atom.Kind != KindSymbol {
		return Void(), &EvalError{Tag: "EXPRNPSR", Err: fmt.Errorf("%w: expected a function name, got %s", ErrSyntax, head)}
	}
	name := head.Atom.Str

	switch name {
	case "if":
		return e.evalIf(x.List[1:])
	case "progn":
		return e.evalSequence(x.List[1:])
	}

	fn, ok := e.functions[name]
	if !ok {
		return Void(), &EvalError{Tag: "EXPRNPSR", Err: fmt.Errorf("%w: %s", ErrUnknownFunction, name)}
	}
	if err := fn.checkArity(len(x.List) - 1); err != nil {
		return Void(), &EvalError{Tag: fn.tag(), Err: err}
	}

	args := make([]Value, 0, len(x.List)-1)
	for _, a := range x.List[1:] {
		v, err := e.eval(a)
		if err != nil {
			return Void(), err
		}
		args = append(args, v)
	}

	v, err := fn.Call(e, args)
	if err != nil {
		var ee *EvalError
		if errors.As(err, &ee) {
			return Void(), err
		}
		return Void(), &EvalError{Tag: fn.tag(), Err: err}
	}
	return v, nil
}

// evalIf handles (if COND then EXPR... [else EXPR...]).
func (e *Environment) evalIf(parts []Expr) (Value, error) {
	if len(parts) < 2 || !isKeyword(parts[1], "then") {
		return Void(), &EvalError{Tag: "IF", Err: fmt.Errorf("%w: expected (if <cond> then ... [else ...])", ErrSyntax)}
	}
	cond, err := e.eval(parts[0])
	if err != nil {
		return Void(), err
	}

	body := parts[2:]
	var thenPart, elsePart []Expr
	thenPart = body
	for i, p := range body {
		if isKeyword(p, "else") {
			thenPart, elsePart = body[:i], body[i+1:]
			break
		}
	}
	if cond.Truthy() {
		return e.evalSequence(thenPart)
	}
	return e.evalSequence(elsePart)
}

func (e *Environment) evalSequence(xs []Expr) (Value, error) {
	result := Void()
	for _, x := range xs {
		v, err := e.eval(x)
		if err != nil {
			return Void(), err
		}
		result = v
	}
	return result, nil
}

func isKeyword(x Expr, kw string) bool {
	return !x.IsList && x.Atom.Kind == KindSymbol && x.Atom.Str == kw
}

func (e *Environment) printError(err error) {
	var ee *EvalError
	if !errors.As(err, &ee) {
		ee = &EvalError{Tag: "EXEC", Err: err}
	}
	e.Write(StdErr, ee.Error()+"\n")
}

// debugLog logs a debug message if logging is enabled.
func (e *Environment) debugLog(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
