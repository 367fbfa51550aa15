package engine

// IsComplete reports whether buf holds at least one complete top-level
// expression and ends in a line terminator.
//
// Parentheses inside strings and comments are ignored. A buffer whose
// parentheses close more than they open is complete so that the error is
// reported rather than waiting forever for more input.
func IsComplete(buf string) bool {
	if buf == "" {
		return false
	}
	if last := buf[len(buf)-1]; last != '\n' && last != '\r' {
		return false
	}

	depth := 0
	token := false
	inString := false
	inComment := false
	escaped := false

	for i := 0; i < len(buf); i++ {
		c := buf[i]

		if inComment {
			if c == '\n' || c == '\r' {
				inComment = false
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case ';':
			inComment = true
		case '"':
			inString = true
			token = true
		case '(':
			depth++
			token = true
		case ')':
			depth--
			if depth < 0 {
				return true
			}
		case ' ', '\t', '\n', '\r':
		default:
			token = true
		}
	}

	return !inString && depth == 0 && token
}
