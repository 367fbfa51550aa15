package engine

import (
	"strconv"
	"strings"
)

// Kind is the type tag of a Value.
type Kind uint8

const (
	KindVoid Kind = iota
	KindSymbol
	KindString
	KindInteger
	KindFloat
	KindInstanceName
	KindMultifield
)

// String returns the type name as the interpreter reports it.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "VOID"
	case KindSymbol:
		return "SYMBOL"
	case KindString:
		return "STRING"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindInstanceName:
		return "INSTANCE-NAME"
	case KindMultifield:
		return "MULTIFIELD"
	default:
		return "UNKNOWN"
	}
}

// Value is an interpreter value.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Multi []Value
}

// Value constructors.
func Void() Value { return Value{Kind: KindVoid} }
func Symbol(s string) Value { return Value{Kind: KindSymbol, Str: s} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Integer(i int64) Value { return Value{Kind: KindInteger, Int: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func InstanceName(s string) Value { return Value{Kind: KindInstanceName, Str: s} }
func Multifield(vs ...Value) Value { return Value{Kind: KindMultifield, Multi: vs} }

// Bool converts b to TRUE or FALSE.
func Bool(b bool) Value {
	if b {
		return True()
	}
	return False()
}

// True and False are the interpreter's boolean symbols.
func True() Value { return Symbol("TRUE") }
func False() Value { return Symbol("FALSE") }

// IsVoid reports whether v carries no value.
func (v Value) IsVoid() bool { return v.Kind == KindVoid }

// IsNumber reports whether v is an integer or float.
func (v Value) IsNumber() bool { return v.Kind == KindInteger || v.Kind == KindFloat }

// Truthy reports whether v counts as true in a condition. Only the FALSE
// symbol is false.
func (v Value) Truthy() bool {
	return !(v.Kind == KindSymbol && v.Str == "FALSE")
}

// Number returns the value as a float64.
func (v Value) Number() float64 {
	if v.Kind == KindInteger {
		return float64(v.Int)
	}
	return v.Float
}

// Text is the unquoted form used by printout and str-cat.
func (v Value) Text() string {
	switch v.Kind {
	case KindSymbol, KindString, KindInstanceName:
		return v.Str
	case KindMultifield:
		parts := make([]string, len(v.Multi))
		for i, m := range v.Multi {
			parts[i] = m.Text()
		}
		return strings.Join(parts, " ")
	default:
		return v.String()
	}
}

// String is the printed form echoed at top level.
func (v Value) String() string {
	switch v.Kind {
	case KindVoid:
		return ""
	case KindSymbol:
		return v.Str
	case KindString:
		return strconv.Quote(v.Str)
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case KindInstanceName:
		return "[" + v.Str + "]"
	case KindMultifield:
		parts := make([]string, len(v.Multi))
		for i, m := range v.Multi {
			parts[i] = m.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return ""
	}
}

// Equal compares kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInteger:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindMultifield:
		if len(v.Multi) != len(o.Multi) {
			return false
		}
		for i := range v.Multi {
			if !v.Multi[i].Equal(o.Multi[i]) {
				return false
			}
		}
		return true
	default:
		return v.Str == o.Str
	}
}
