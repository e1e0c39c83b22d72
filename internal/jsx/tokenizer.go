package jsx

// scanState is the lexical context of the character being scanned.
type scanState int

const (
	// stateNormal is markup context: tag names, attributes, < and >
	stateNormal scanState = iota
	// stateString is inside a quoted literal; quote holds the delimiter
	stateString
	// stateBrace is inside a {...} expression; braceDepth holds the nesting
	stateBrace
)

// String returns the state name
func (s scanState) String() string {
	switch s {
	case stateNormal:
		return "normal"
	case stateString:
		return "string"
	case stateBrace:
		return "brace"
	default:
		return "unknown"
	}
}

// tokenizer classifies characters as markup, string literal or expression.
// It carries its state across lines, so a string or expression spanning a
// line break keeps the following line in the right context.
type tokenizer struct {
	state      scanState
	quote      byte
	braceDepth int
	escaped    bool
}

// step consumes c and reports the state c was read in. A quote or brace that
// opens a literal or expression is reported as belonging to it.
func (t *tokenizer) step(c byte) scanState {
	switch t.state {
	case stateString:
		if t.escaped {
			t.escaped = false
			return stateString
		}
		if c == '\\' {
			t.escaped = true
			return stateString
		}
		if c == t.quote {
			t.quote = 0
			if t.braceDepth > 0 {
				t.state = stateBrace
			} else {
				t.state = stateNormal
			}
		}
		return stateString

	case stateBrace:
		switch c {
		case '"', '\'', '`':
			t.state = stateString
			t.quote = c
			return stateString
		case '{':
			t.braceDepth++
		case '}':
			t.braceDepth--
			if t.braceDepth == 0 {
				t.state = stateNormal
			}
		}
		return stateBrace

	default:
		switch c {
		case '"', '\'', '`':
			t.state = stateString
			t.quote = c
			return stateString
		case '{':
			t.state = stateBrace
			t.braceDepth = 1
			return stateBrace
		}
		return stateNormal
	}
}

// inMarkup reports whether the next character would be read as markup.
func (t *tokenizer) inMarkup() bool {
	return t.state == stateNormal
}

// markupAt reports whether position pos of line lies in markup context,
// scanning only the characters before it on the same line.
func markupAt(line string, pos int) bool {
	var t tokenizer
	for i := 0; i < pos && i < len(line); i++ {
		t.step(line[i])
	}
	return t.inMarkup()
}
