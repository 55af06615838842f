package dyntext

import (
	"fmt"
	"math"

	"github.com/randalmurphal/dyntext/pkg/dyntext/selection"
)

// NoCounter is the Counter value meaning "no explicit counter".
const NoCounter = selection.Uninitialized

// Request holds the inputs of one evaluation.
//
// The zero value is usable: it carries no explicit counter. Set one with
// SetCounter.
type Request struct {
	// Text is the template.
	Text string
	// Seed drives the pseudorandom pick in seeded mode.
	Seed uint64
	// Counter is the explicit counter. It is read only when HasCounter is
	// set and Counter is not negative.
	Counter int64
	// HasCounter marks Counter as supplied by the host.
	HasCounter bool
	// Shuffle selects round-robin indexing instead of the seeded pick.
	Shuffle bool
	// Autoincrement advances the counter on every call.
	Autoincrement bool
	// Prefix, when non-empty, is trimmed and prepended with one space.
	Prefix string
}

// NewRequest returns a Request for text with the default inputs:
// seed 0, no counter, seeded mode, no autoincrement, no prefix.
func NewRequest(text string) Request {
	return Request{Text: text, Counter: NoCounter}
}

// SetCounter sets an explicit counter. A negative counter, NoCounter
// included, clears it.
func (r *Request) SetCounter(counter int64) {
	if counter <= NoCounter {
		r.ClearCounter()
		return
	}
	r.Counter = counter
	r.HasCounter = true
}

// ClearCounter removes the explicit counter.
func (r *Request) ClearCounter() {
	r.Counter = NoCounter
	r.HasCounter = false
}

// ExplicitCounter returns the explicit counter, or NoCounter when none is
// set.
func (r Request) ExplicitCounter() int64 {
	if !r.HasCounter || r.Counter <= NoCounter {
		return NoCounter
	}
	return r.Counter
}

// normalized returns r in canonical form: requests that select the same way
// compare equal.
func (r Request) normalized() Request {
	if r.ExplicitCounter() == NoCounter {
		r.ClearCounter()
	}
	return r
}

// Result is the output of one evaluation.
type Result struct {
	// Text is the selected combination, prefixed when a prefix was given.
	// On fallback it is the unmodified template.
	Text string
	// Counter is the engine's counter after the call. Hosts feed it back to
	// display or re-supply it.
	Counter int64
	// Index is the 0-based index of the selected combination.
	Index int
	// Total is the number of combinations of the template.
	Total int
	// Path lists the group choices of the selection, as {j/n} steps.
	Path string
	// Debug is a one-line description of the evaluation.
	Debug string
	// Err is set when the evaluation fell back to the input.
	Err error
}

// Fallback reports whether the evaluation failed and returned the input.
func (r Result) Fallback() bool {
	return r.Err != nil
}

// debugLine formats the one-line evaluation summary.
func debugLine(template, text, path string, index, total int) string {
	return fmt.Sprintf("'%s' -> '%s' %s (combination %d/%d)", template, text, path, index+1, total)
}

// ForceReevaluate reports whether a host must run the evaluation even when
// the inputs did not change. It is true exactly when autoincrement is on.
func ForceReevaluate(req Request) bool {
	return req.Autoincrement
}

// ChangeKey returns a value a host cache can compare with == to decide
// whether the inputs changed. With autoincrement on it returns NaN, which
// never equals itself, so the evaluation always runs.
func ChangeKey(req Request) any {
	if ForceReevaluate(req) {
		return math.NaN()
	}
	return req.normalized()
}
