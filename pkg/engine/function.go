package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Function errors.
var (
	ErrUnknownFunction = errors.New("unknown function")
	ErrArgCount        = errors.New("wrong number of arguments")
	ErrArgType         = errors.New("wrong argument type")
)

// Unlimited marks a Function without an upper argument bound.
const Unlimited = -1

// Function is a builtin callable from command text. Arguments are evaluated
// before Call runs.
type Function struct {
	Name    string
	MinArgs int
	MaxArgs int

	// ErrorTag prefixes error diagnostics, e.g. "[PIN] ...". Defaults to the
	// upper-cased function name.
	ErrorTag string

	Call func(env *Environment, args []Value) (Value, error)
}

func (f *Function) tag() string {
	if f.ErrorTag != "" {
		return f.ErrorTag
	}
	return strings.ToUpper(f.Name)
}

func (f *Function) checkArity(n int) error {
	if n < f.MinArgs || (f.MaxArgs != Unlimited && n > f.MaxArgs) {
		switch {
		case f.MinArgs == f.MaxArgs:
			return fmt.Errorf("%w: %s expects exactly %d", ErrArgCount, f.Name, f.MinArgs)
		case f.MaxArgs == Unlimited:
			return fmt.Errorf("%w: %s expects at least %d", ErrArgCount, f.Name, f.MinArgs)
		default:
			return fmt.Errorf("%w: %s expects %d to %d", ErrArgCount, f.Name, f.MinArgs, f.MaxArgs)
		}
	}
	return nil
}

// DefineFunction registers fn, replacing any function with the same name.
func (e *Environment) DefineFunction(fn Function) {
	if fn.Call == nil {
		panic("engine: function " + fn.Name + " has no Call")
	}
	e.functions[fn.Name] = &fn
}

// HasFunction reports whether name is defined.
func (e *Environment) HasFunction(name string) bool {
	_, ok := e.functions[name]
	return ok
}

// EvalError is an evaluation failure attributed to a diagnostic tag.
type EvalError struct {
	Tag string
	Err error
}

func (e *EvalError) Error() string { return "[" + e.Tag + "] " + e.Err.Error() }
func (e *EvalError) Unwrap() error { return e.Err }

// NameArg returns a symbolic name argument. Symbols, strings and instance
// names are accepted.
func NameArg(fn string, args []Value, i int) (string, error) {
	v := args[i]
	switch v.Kind {
	case KindSymbol, KindString, KindInstanceName:
		return v.Str, nil
	default:
		return "", fmt.Errorf("%w: %s argument #%d expects a name, got %s", ErrArgType, fn, i+1, v.Kind)
	}
}

// NumberArg returns a numeric argument.
func NumberArg(fn string, args []Value, i int) (Value, error) {
	v := args[i]
	if !v.IsNumber() {
		return Value{}, fmt.Errorf("%w: %s argument #%d expects a number, got %s", ErrArgType, fn, i+1, v.Kind)
	}
	return v, nil
}
