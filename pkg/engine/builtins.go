package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDivideByZero is returned by "/" with a zero divisor.
var ErrDivideByZero = errors.New("division by zero")

func defineCoreFunctions(e *Environment) {
	for _, fn := range []Function{
		{Name: "println", MinArgs: 0, MaxArgs: Unlimited, Call: fnPrintln},
		{Name: "printout", MinArgs: 1, MaxArgs: Unlimited, Call: fnPrintout},
		{Name: "str-cat", MinArgs: 0, MaxArgs: Unlimited, Call: fnStrCat},
		{Name: "+", MinArgs: 1, MaxArgs: Unlimited, Call: arith('+')},
		{Name: "-", MinArgs: 1, MaxArgs: Unlimited, Call: arith('-')},
		{Name: "*", MinArgs: 1, MaxArgs: Unlimited, Call: arith('*')},
		{Name: "/", MinArgs: 2, MaxArgs: Unlimited, Call: fnDivide},
		{Name: "=", MinArgs: 2, MaxArgs: Unlimited, Call: fnNumEqual},
		{Name: "eq", MinArgs: 2, MaxArgs: Unlimited, Call: fnEq},
		{Name: "neq", MinArgs: 2, MaxArgs: Unlimited, Call: fnNeq},
		{Name: "not", MinArgs: 1, MaxArgs: 1, Call: fnNot},
		{Name: "instances", MinArgs: 0, MaxArgs: 0, Call: fnInstances},
		{Name: "unmake-instance", MinArgs: 1, MaxArgs: 1, Call: fnUnmakeInstance},
		{Name: "send", MinArgs: 2, MaxArgs: 3, Call: fnSend},
		{Name: "clear", MinArgs: 0, MaxArgs: 0, Call: fnClear},
	} {
		e.DefineFunction(fn)
	}
}

func fnPrintln(env *Environment, args []Value) (Value, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.Text())
	}
	b.WriteByte('\n')
	env.Write(StdOut, b.String())
	return Void(), nil
}

// (printout <logical-name> <item>*), where t means stdout and the symbols
// crlf and tab print a newline and a tab.
func fnPrintout(env *Environment, args []Value) (Value, error) {
	name, err := NameArg("printout", args, 0)
	if err != nil {
		return Void(), err
	}
	if name == "t" {
		name = StdOut
	}

	var b strings.Builder
	for _, a := range args[1:] {
		if a.Kind == KindSymbol {
			switch a.Str {
			case "crlf":
				b.WriteByte('\n')
				continue
			case "tab":
				b.WriteByte('\t')
				continue
			}
		}
		b.WriteString(a.Text())
	}
	env.Write(name, b.String())
	return Void(), nil
}

func fnStrCat(_ *Environment, args []Value) (Value, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.Text())
	}
	return String(b.String()), nil
}

func arith(op byte) func(*Environment, []Value) (Value, error) {
	name := string(op)
	return func(_ *Environment, args []Value) (Value, error) {
		acc, err := NumberArg(name, args, 0)
		if err != nil {
			return Void(), err
		}
		if len(args) == 1 && op == '-' {
			if acc.Kind == KindInteger {
				return Integer(-acc.Int), nil
			}
			return Float(-acc.Float), nil
		}
		for i := 1; i < len(args); i++ {
			n, err := NumberArg(name, args, i)
			if err != nil {
				return Void(), err
			}
			if acc.Kind == KindInteger && n.Kind == KindInteger {
				switch op {
				case '+':
					acc.Int += n.Int
				case '-':
					acc.Int -= n.Int
				case '*':
					acc.Int *= n.Int
				}
				continue
			}
			x, y := acc.Number(), n.Number()
			switch op {
			case '+':
				x += y
			case '-':
				x -= y
			case '*':
				x *= y
			}
			acc = Float(x)
		}
		return acc, nil
	}
}

func fnDivide(_ *Environment, args []Value) (Value, error) {
	acc, err := NumberArg("/", args, 0)
	if err != nil {
		return Void(), err
	}
	x := acc.Number()
	for i := 1; i < len(args); i++ {
		n, err := NumberArg("/", args, i)
		if err != nil {
			return Void(), err
		}
		if n.Number() == 0 {
			return Void(), ErrDivideByZero
		}
		x /= n.Number()
	}
	return Float(x), nil
}

func fnNumEqual(_ *Environment, args []Value) (Value, error) {
	first, err := NumberArg("=", args, 0)
	if err != nil {
		return Void(), err
	}
	for i := 1; i < len(args); i++ {
		n, err := NumberArg("=", args, i)
		if err != nil {
			return Void(), err
		}
		if n.Number() != first.Number() {
			return False(), nil
		}
	}
	return True(), nil
}

func fnEq(_ *Environment, args []Value) (Value, error) {
	for _, a := range args[1:] {
		if !a.Equal(args[0]) {
			return False(), nil
		}
	}
	return True(), nil
}

func fnNeq(_ *Environment, args []Value) (Value, error) {
	for _, a := range args[1:] {
		if a.Equal(args[0]) {
			return False(), nil
		}
	}
	return True(), nil
}

func fnNot(_ *Environment, args []Value) (Value, error) {
	return Bool(!args[0].Truthy()), nil
}

func fnInstances(env *Environment, _ []Value) (Value, error) {
	insts := env.Instances()
	var b strings.Builder
	for _, inst := range insts {
		fmt.Fprintf(&b, "[%s] of %s\n", inst.Name, inst.Class)
	}
	fmt.Fprintf(&b, "For a total of %d instance", len(insts))
	if len(insts) != 1 {
		b.WriteByte('s')
	}
	b.WriteString(".\n")
	env.Write(StdOut, b.String())
	return Void(), nil
}

func fnUnmakeInstance(env *Environment, args []Value) (Value, error) {
	name, err := NameArg("unmake-instance", args, 0)
	if err != nil {
		return Void(), err
	}
	if !env.HasInstance(name) {
		return False(), nil
	}
	if err := env.DeleteInstance(name); err != nil {
		return Void(), err
	}
	return True(), nil
}

// (send [name] get-<slot>) or (send [name] put-<slot> value).
func fnSend(env *Environment, args []Value) (Value, error) {
	name, err := NameArg("send", args, 0)
	if err != nil {
		return Void(), err
	}
	msg, err := NameArg("send", args, 1)
	if err != nil {
		return Void(), err
	}

	switch {
	case strings.HasPrefix(msg, "get-") && len(args) == 2:
		return env.Slot(name, strings.TrimPrefix(msg, "get-"))
	case strings.HasPrefix(msg, "put-") && len(args) == 3:
		slot := strings.TrimPrefix(msg, "put-")
		if _, err := env.Slot(name, slot); err != nil {
			return Void(), err
		}
		if err := env.SetSlot(name, slot, args[2].Text()); err != nil {
			return Void(), err
		}
		return True(), nil
	default:
		return Void(), fmt.Errorf("%w: unsupported message %s", ErrArgType, msg)
	}
}

func fnClear(env *Environment, _ []Value) (Value, error) {
	var errs []error
	for _, inst := range env.Instances() {
		if err := env.DeleteInstance(inst.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return Void(), errors.Join(errs...)
}
