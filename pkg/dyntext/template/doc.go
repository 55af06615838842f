/*
Package template parses and expands alternation templates.

# Overview

A template is plain text with {option|option} groups. Groups nest freely and
options may be empty:

	Hello {fast|slow|{small|huge}} {green|red|} car!

Parse turns the text into a Sequence tree. Expand enumerates every concrete
string the tree denotes, in a fixed order.

# Basic Usage

	seq := template.Parse("{a|b}{c|d}")
	combos := template.Expand(seq)
	// combos: ["ac", "ad", "bc", "bd"]

The left-most group varies slowest. Options of a group are listed in source
order, and a nested group is resolved inside its option before the option
contributes to the enclosing group:

	template.Expand(template.Parse("{a|{b|c}}"))
	// ["a", "b", "c"]

# Malformed Input

Parsing never fails. A group that is never closed turns into literal text,
starting at its opening brace and running to the end of the input:

	template.Expand(template.Parse("Hi {a|b"))
	// ["Hi {a|b"]

A stray | or } outside any group is ordinary text.

# Counting

Count returns the number of combinations without building them. It saturates
at math.MaxUint64 for very large templates.

# Limits

Expansion is exponential in the number of groups. Expand has no limit; use an
Expander when the template comes from an untrusted source:

	exp := template.NewExpander(template.WithLimit(10000))
	combos, err := exp.Expand(seq)
	// err is a *LimitError when Count(seq) > 10000

# Choice Paths

ExpandPaths returns each combination together with the choices that produced
it. Every group choice is written as {j/n}, 1-based, nested choices following
the choice of their enclosing option:

	template.ExpandPaths(template.Parse("{a|{b|c}}"))
	// [{a {1/2}} {b {2/2}{1/2}} {c {2/2}{2/2}}]

# Thread Safety

Sequence values are immutable once parsed and safe for concurrent use.
Expander is safe for concurrent use after construction.
*/
package template
