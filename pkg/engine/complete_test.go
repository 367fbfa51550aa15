package engine

import "testing"

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name string
		buf  string
		want bool
	}{
		{"Empty", "", false},
		{"NoNewline", "(+ 1 2)", false},
		{"Simple", "(+ 1 2)\n", true},
		{"CarriageReturn", "(+ 1 2)\r", true},
		{"Open", "(+ 1\n", false},
		{"OpenThenClosed", "(+ 1\n2)\n", true},
		{"BareAtom", "TRUE\n", true},
		{"OnlyWhitespace", "  \n", false},
		{"ParenInString", "(println \")\")\n", true},
		{"OpenParenInString", "(println \"(\")\n", true},
		{"UnterminatedString", "(println \"abc)\n", false},
		{"EscapedQuote", "(println \"a\\\"b\")\n", true},
		{"CommentParen", "(+ 1 2) ; (\n", true},
		{"OnlyComment", "; hello\n", false},
		{"ExtraClose", ")\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsComplete(tt.buf); got != tt.want {
				t.Errorf("IsComplete(%q) = %v, want %v", tt.buf, got, tt.want)
			}
		})
	}
}
