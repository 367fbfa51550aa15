package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned for malformed command text.
var ErrSyntax = errors.New("syntax error")

// Expr is a parsed expression: an atom or a list of expressions.
type Expr struct {
	Atom Value
	List []Expr
	// IsList distinguishes "()" from an atom.
	IsList bool
}

func (x Expr) String() string {
	if !x.IsList {
		return x.Atom.String()
	}
	parts := make([]string, len(x.List))
	for i, e := range x.List {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

type reader struct {
	src string
	pos int
}

// Parse reads every top-level expression in src.
func Parse(src string) ([]Expr, error) {
	r := &reader{src: src}
	var out []Expr
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return out, nil
		}
		x, err := r.read()
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
}

func (r *reader) skipSpace() {
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		switch {
		case c == ';':
			for r.pos < len(r.src) && r.src[r.pos] != '\n' && r.src[r.pos] != '\r' {
				r.pos++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			r.pos++
		default:
			return
		}
	}
}

func (r *reader) read() (Expr, error) {
	c := r.src[r.pos]
	switch c {
	case '(':
		r.pos++
		list := Expr{IsList: true}
		for {
			r.skipSpace()
			if r.pos >= len(r.src) {
				return Expr{}, fmt.Errorf("%w: missing ')'", ErrSyntax)
			}
			if r.src[r.pos] == ')' {
				r.pos++
				return list, nil
			}
			x, err := r.read()
			if err != nil {
				return Expr{}, err
			}
			list.List = append(list.List, x)
		}
	case ')':
		return Expr{}, fmt.Errorf("%w: unexpected ')'", ErrSyntax)
	case '"':
		s, err := r.readString()
		if err != nil {
			return Expr{}, err
		}
		return Expr{Atom: String(s)}, nil
	default:
		return Expr{Atom: r.readAtom()}, nil
	}
}

func (r *reader) readString() (string, error) {
	r.pos++
	var b strings.Builder
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		r.pos++
		switch c {
		case '\\':
			if r.pos < len(r.src) {
				b.WriteByte(r.src[r.pos])
				r.pos++
			}
		case '"':
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("%w: unterminated string", ErrSyntax)
}

func (r *reader) readAtom() Value {
	start := r.pos
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		if c == '(' || c == ')' || c == '"' || c == ';' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		r.pos++
	}
	return atom(r.src[start:r.pos])
}

func atom(tok string) Value {
	if len(tok) > 2 && tok[0] == '[' && tok[len(tok)-1] == ']' {
		return InstanceName(tok[1 : len(tok)-1])
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Integer(i)
	}
	if strings.ContainsAny(tok, "0123456789") {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return Float(f)
		}
	}
	return Symbol(tok)
}
