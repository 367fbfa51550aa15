package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestExecuteEchoesAndPrompts(t *testing.T) {
	env, cap := newTestEnv()

	if got := run(env, "(+ 1 2)\n"); got != Completed {
		t.Fatalf("completion = %v, want Completed", got)
	}
	want := "3\n" + DefaultPrompt
	if got := cap.text(StdOut); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if env.CommandString() != "" {
		t.Errorf("buffer = %q, want empty", env.CommandString())
	}
}

func TestExecuteIncompleteKeepsBuffer(t *testing.T) {
	env, cap := newTestEnv()

	if got := run(env, "(+ 1\n"); got != NotComplete {
		t.Fatalf("completion = %v, want NotComplete", got)
	}
	if env.CommandString() != "(+ 1\n" {
		t.Errorf("buffer = %q", env.CommandString())
	}
	if cap.text(StdOut) != "" {
		t.Errorf("stdout = %q, want nothing", cap.text(StdOut))
	}

	if got := run(env, "2)\n"); got != Completed {
		t.Fatalf("completion = %v, want Completed", got)
	}
	if !strings.HasPrefix(cap.text(StdOut), "3\n") {
		t.Errorf("stdout = %q", cap.text(StdOut))
	}
}

func TestExecuteErrorGoesToStderr(t *testing.T) {
	env, cap := newTestEnv()

	if got := run(env, "(no-such-fn)\n"); got != CompletedWithError {
		t.Fatalf("completion = %v, want CompletedWithError", got)
	}
	if got := cap.text(StdErr); !strings.HasPrefix(got, "[EXPRNPSR] unknown function") {
		t.Errorf("stderr = %q", got)
	}
	// Prompt still printed, interpreter still usable.
	if cap.text(StdOut) != DefaultPrompt {
		t.Errorf("stdout = %q", cap.text(StdOut))
	}
	if got := run(env, "(+ 1 1)\n"); got != Completed {
		t.Errorf("follow-up completion = %v", got)
	}
}

func TestExecuteStopsAtFirstError(t *testing.T) {
	env, cap := newTestEnv()

	run(env, "(println one) (/ 1 0) (println two)\n")
	out := cap.text(StdOut)
	if !strings.Contains(out, "one\n") || strings.Contains(out, "two") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(cap.text(StdErr), "[/] division by zero") {
		t.Errorf("stderr = %q", cap.text(StdErr))
	}
}

func TestErrorTag(t *testing.T) {
	env, cap := newTestEnv()
	env.DefineFunction(Function{
		Name: "fail", MinArgs: 0, MaxArgs: 0, ErrorTag: "PIN",
		Call: func(*Environment, []Value) (Value, error) {
			return Void(), errors.New("pin has not yet been registered")
		},
	})

	run(env, "(fail)\n")
	if got := cap.text(StdErr); got != "[PIN] pin has not yet been registered\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestArity(t *testing.T) {
	env, cap := newTestEnv()

	run(env, "(not)\n")
	if !strings.Contains(cap.text(StdErr), "wrong number of arguments") {
		t.Errorf("stderr = %q", cap.text(StdErr))
	}
}

func TestHalt(t *testing.T) {
	env, cap := newTestEnv()
	env.DefineFunction(Function{
		Name: "stop", MinArgs: 0, MaxArgs: 0,
		Call: func(e *Environment, _ []Value) (Value, error) {
			e.Halt()
			return True(), nil
		},
	})

	if got := run(env, "(stop) (println after)\n"); got != CompletedWithError {
		t.Fatalf("completion = %v, want CompletedWithError", got)
	}
	if strings.Contains(cap.text(StdOut), "after") {
		t.Error("evaluation continued after Halt")
	}

	// Next command runs normally.
	if got := run(env, "(println ok)\n"); got != Completed {
		t.Errorf("completion after halt = %v", got)
	}
}

func TestEval(t *testing.T) {
	env := New(Config{})

	tests := []struct {
		src  string
		want Value
	}{
		{"(+ 1 2 3)", Integer(6)},
		{"(+ 1 2.5)", Float(3.5)},
		{"(- 5)", Integer(-5)},
		{"(* 2 3)", Integer(6)},
		{"(/ 6 4)", Float(1.5)},
		{"(= 1 1.0)", True()},
		{"(eq HIGH HIGH)", True()},
		{"(eq HIGH LOW)", False()},
		{"(neq HIGH LOW)", True()},
		{"(not FALSE)", True()},
		{"(str-cat a \"b\" 1)", String("ab1")},
		{"(if (eq 1 1) then yes else no)", Symbol("yes")},
		{"(if FALSE then yes else no)", Symbol("no")},
		{"(if FALSE then yes)", Void()},
		{"(progn 1 2)", Integer(2)},
	}

	for _, tt := range tests {
		got, err := env.Eval(tt.src)
		if err != nil {
			t.Errorf("Eval(%q) error = %v", tt.src, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestPrintout(t *testing.T) {
	env, cap := newTestEnv()

	run(env, "(printout t \"a\" tab 1 crlf)\n")
	if got := cap.text(StdOut); got != "a\t1\n"+DefaultPrompt {
		t.Errorf("stdout = %q", got)
	}

	run(env, "(printout stdwrn careful crlf)\n")
	if got := cap.text(StdWrn); got != "careful\n" {
		t.Errorf("stdwrn = %q", got)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Symbol("HIGH"), "HIGH"},
		{String("x\"y"), `"x\"y"`},
		{Float(2), "2.0"},
		{InstanceName("D2"), "[D2]"},
		{Multifield(Integer(1), Symbol("a")), "(1 a)"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
