package template

// frame is an open group on the parser stack.
type frame struct {
	// start is the byte offset of the opening brace.
	start int
	// parent is the sequence the group is appended to once closed.
	parent Sequence
	// options holds the options completed so far.
	options []Sequence
}

// Parse turns template text into a Sequence.
//
// Parse is total: it never fails. A group without a closing brace becomes a
// Literal holding the input from its opening brace to the end, and any
// partial structure built inside it is discarded. Outside a group, | and }
// are plain text.
//
// The parser keeps open groups on an explicit stack, so nesting depth is
// bounded only by the input length.
//
// Example:
//
//	seq := Parse("Hello {fast|slow} car")
//	// Sequence{Literal{"Hello "}, Group{...}, Literal{" car"}}
func Parse(text string) Sequence {
	var (
		stack    []frame
		current  Sequence
		litStart int
	)

	// flush appends text[litStart:end] to current as a Literal.
	flush := func(end int) {
		if end > litStart {
			current = appendLiteral(current, text[litStart:end])
		}
	}

	// Braces and pipes are ASCII, so scanning bytes never splits a rune.
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			flush(i)
			stack = append(stack, frame{start: i, parent: current})
			current = nil
			litStart = i + 1

		case '|':
			if len(stack) == 0 {
				continue
			}
			flush(i)
			top := &stack[len(stack)-1]
			top.options = append(top.options, current)
			current = nil
			litStart = i + 1

		case '}':
			if len(stack) == 0 {
				continue
			}
			flush(i)
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			group := Group{Options: append(top.options, current)}
			current = append(top.parent, group)
			litStart = i + 1
		}
	}

	if len(stack) > 0 {
		// The outermost unclosed group swallows everything after it.
		outer := stack[0]
		return appendLiteral(outer.parent, text[outer.start:])
	}

	flush(len(text))
	return current
}

// appendLiteral appends text to seq, merging with a trailing Literal.
func appendLiteral(seq Sequence, text string) Sequence {
	if n := len(seq); n > 0 {
		if last, ok := seq[n-1].(Literal); ok {
			seq[n-1] = Literal{Text: last.Text + text}
			return seq
		}
	}
	return append(seq, Literal{Text: text})
}
