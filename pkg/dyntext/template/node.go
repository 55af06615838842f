package template

import "strings"

// Node is one element of a Sequence. It is either a Literal or a Group.
type Node interface {
	// writeTo renders the node back to template syntax.
	writeTo(b *strings.Builder)
}

// Literal is a run of text with no alternation syntax left to resolve.
type Literal struct {
	Text string
}

// Group is a {a|b|c} construct. Each option is a Sequence and may contain
// further groups. A parsed Group always has at least one option; an option
// may be empty.
type Group struct {
	Options []Sequence
}

// Sequence is an ordered list of nodes that concatenate left to right.
type Sequence []Node

func (l Literal) writeTo(b *strings.Builder) {
	b.WriteString(l.Text)
}

func (g Group) writeTo(b *strings.Builder) {
	b.WriteByte('{')
	for i, opt := range g.Options {
		if i > 0 {
			b.WriteByte('|')
		}
		for _, n := range opt {
			n.writeTo(b)
		}
	}
	b.WriteByte('}')
}

// String renders the sequence back to template syntax.
//
// For any text, Parse(text).String() == text.
func (s Sequence) String() string {
	var b strings.Builder
	for _, n := range s {
		n.writeTo(&b)
	}
	return b.String()
}

// Groups returns the number of groups in the sequence, nested ones included.
func (s Sequence) Groups() int {
	count := 0
	for _, n := range s {
		if g, ok := n.(Group); ok {
			count++
			for _, opt := range g.Options {
				count += opt.Groups()
			}
		}
	}
	return count
}
