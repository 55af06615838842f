package template

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// Combination is one fully resolved string together with the choices that
// produced it.
type Combination struct {
	// Text is the resolved string.
	Text string `json:"text"`
	// Path lists the group choices as {j/n}, 1-based, outer choices first.
	Path string `json:"path"`
}

// Expander expands parsed templates into their combinations.
//
// Create with NewExpander() and configure with Option functions.
// Expander is safe for concurrent use after construction.
type Expander struct {
	limit uint64
}

// NewExpander creates a new Expander with the given options.
//
// Default configuration:
//   - Limit: 0 (no limit)
//
// Example:
//
//	exp := NewExpander(WithLimit(1000))
func NewExpander(opts ...Option) *Expander {
	e := &Expander{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns every combination of seq.
//
// Returns a *LimitError without expanding when a limit is configured and
// Count(seq) exceeds it.
func (e *Expander) Expand(seq Sequence) ([]string, error) {
	if err := e.check(seq); err != nil {
		return nil, err
	}
	return Expand(seq), nil
}

// ExpandPaths is like Expand but keeps the choice path of each combination.
func (e *Expander) ExpandPaths(seq Sequence) ([]Combination, error) {
	if err := e.check(seq); err != nil {
		return nil, err
	}
	return ExpandPaths(seq), nil
}

// Limit returns the configured limit, 0 meaning unlimited.
func (e *Expander) Limit() uint64 {
	return e.limit
}

func (e *Expander) check(seq Sequence) error {
	if e.limit == 0 {
		return nil
	}
	if n := Count(seq); n > e.limit {
		return &LimitError{Count: n, Limit: e.limit}
	}
	return nil
}

// LimitError is returned when a template has more combinations than the
// Expander allows.
type LimitError struct {
	// Count is the number of combinations the template denotes.
	Count uint64
	// Limit is the configured maximum.
	Limit uint64
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	count := strconv.FormatUint(e.Count, 10)
	if e.Count == math.MaxUint64 {
		count = "more than " + count
	}
	return fmt.Sprintf("template has %s combinations, limit is %d", count, e.Limit)
}

// Expand returns every combination of seq in Cartesian-product order: the
// left-most group varies slowest, options of one group appear in source order.
//
// The result always has at least one element. An empty sequence expands to
// a single empty string.
//
// Example:
//
//	Expand(Parse("{a|b}{c|d}"))
//	// ["ac", "ad", "bc", "bd"]
func Expand(seq Sequence) []string {
	parts := expandParts(seq, false)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.text.String()
	}
	return out
}

// ExpandPaths returns the same combinations as Expand, in the same order,
// each paired with its choice path.
func ExpandPaths(seq Sequence) []Combination {
	parts := expandParts(seq, true)
	out := make([]Combination, len(parts))
	for i, p := range parts {
		out[i] = Combination{Text: p.text.String(), Path: p.path.String()}
	}
	return out
}

// partial is a combination under construction. Text and path are joined
// without copying and materialized once, so deep nesting costs linear time.
type partial struct {
	text *rope
	path *rope
}

// expandParts folds seq left to right: a literal extends every partial, a
// group replaces the partials by their product with the group's choices.
func expandParts(seq Sequence, withPaths bool) []partial {
	acc := []partial{{}}
	for _, n := range seq {
		switch n := n.(type) {
		case Literal:
			lit := leaf(n.Text)
			for i := range acc {
				acc[i].text = join(acc[i].text, lit)
			}
		case Group:
			choices := n.expandParts(withPaths)
			next := make([]partial, 0, len(acc)*len(choices))
			for _, prefix := range acc {
				for _, choice := range choices {
					next = append(next, partial{
						text: join(prefix.text, choice.text),
						path: join(prefix.path, choice.path),
					})
				}
			}
			acc = next
		}
	}
	return acc
}

// expandParts concatenates the expansions of every option in order, each
// path starting with the option's own step.
func (g Group) expandParts(withPaths bool) []partial {
	var out []partial
	for j, opt := range g.Options {
		var step *rope
		if withPaths {
			step = leaf(choiceStep(j+1, len(g.Options)))
		}
		for _, c := range expandParts(opt, withPaths) {
			c.path = join(step, c.path)
			out = append(out, c)
		}
	}
	return out
}

func choiceStep(j, n int) string {
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(strconv.Itoa(j))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(n))
	b.WriteByte('}')
	return b.String()
}

// rope is an immutable concatenation tree. A nil rope is the empty string.
// Inner nodes always have both children; leaves hold s.
type rope struct {
	left, right *rope
	s           string
	size        int
}

func leaf(s string) *rope {
	if s == "" {
		return nil
	}
	return &rope{s: s, size: len(s)}
}

func join(a, b *rope) *rope {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &rope{left: a, right: b, size: a.size + b.size}
}

// String flattens r left to right.
func (r *rope) String() string {
	if r == nil {
		return ""
	}
	if r.left == nil {
		return r.s
	}
	var b strings.Builder
	b.Grow(r.size)
	stack := []*rope{r}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.left == nil {
			b.WriteString(n.s)
			continue
		}
		stack = append(stack, n.right, n.left)
	}
	return b.String()
}

// Count returns len(Expand(seq)) without expanding.
//
// The count is the product, over every top-level group, of the sum of its
// options' counts, applied recursively. It saturates at math.MaxUint64.
func Count(seq Sequence) uint64 {
	total := uint64(1)
	for _, n := range seq {
		g, ok := n.(Group)
		if !ok {
			continue
		}
		total = mulSat(total, g.count())
	}
	return total
}

func (g Group) count() uint64 {
	var sum uint64
	for _, opt := range g.Options {
		sum = addSat(sum, Count(opt))
	}
	return sum
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

func addSat(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// defaultExpander has no limit.
var defaultExpander = NewExpander()

// ExpandString parses and expands text with no limit.
//
// Example:
//
//	ExpandString("{x|}")
//	// ["x", ""]
func ExpandString(text string) []string {
	// Default expander has no limit and never returns errors.
	result, _ := defaultExpander.Expand(Parse(text))
	return result
}
