// Package selection picks one combination index per call and keeps the
// per-instance counter that drives the pick.
//
// Three modes are supported:
//   - seeded: a reproducible pseudorandom index derived from seed + counter
//   - shuffle: round-robin, index = counter mod total
//   - autoincrement: the counter advances by one (mod total) on every call,
//     combined with either of the above
package selection

import (
	"errors"
	"math/rand/v2"
)

// Uninitialized is the counter value of a State that has never been set.
const Uninitialized int64 = -1

// ErrNoCombinations indicates Select was called with a total below one.
var ErrNoCombinations = errors.New("no combinations to select from")

// ErrNilState indicates Select was called without a State.
var ErrNilState = errors.New("selection state is nil")

// State is the counter owned by one engine instance.
//
// Create with NewState. The zero value holds counter 0, not Uninitialized.
// State is not safe for concurrent use; the owner serializes access.
type State struct {
	last int64
}

// NewState returns a State holding Uninitialized.
func NewState() State {
	return State{last: Uninitialized}
}

// Last returns the current counter value.
func (s State) Last() int64 {
	return s.last
}

// Initialized reports whether the counter has left the sentinel.
func (s State) Initialized() bool {
	return s.last != Uninitialized
}

// Params are the inputs of one selection.
type Params struct {
	// Total is the number of combinations. Must be at least 1.
	Total int
	// Seed feeds the pseudorandom pick when Shuffle is false.
	Seed uint64
	// Counter is the caller-supplied counter; -1 means none. Values below
	// -1 are treated as -1.
	Counter int64
	// Shuffle selects round-robin indexing instead of the seeded pick.
	Shuffle bool
	// Autoincrement advances the counter on every call.
	Autoincrement bool
}

// Mode returns "shuffle" or "seeded".
func (p Params) Mode() string {
	if p.Shuffle {
		return "shuffle"
	}
	return "seeded"
}

// Select updates s according to p and returns an index in [0, p.Total).
//
// State transitions, applied before the index is computed:
//  1. no counter, autoincrement: Uninitialized becomes 0, otherwise the
//     counter advances to (last+1) mod total
//  2. explicit counter different from the state: adopted verbatim, no modulo
//  3. explicit counter equal to the state: advances once if autoincrement,
//     otherwise unchanged
//  4. no counter, no autoincrement: unchanged, possibly still Uninitialized
//
// In shuffle mode the index is last mod total. Otherwise it is drawn from a
// PCG generator seeded with seed + uint64(last), wrapping on overflow. A
// state still at Uninitialized therefore seeds with seed-1.
func Select(p Params, s *State) (int, error) {
	if s == nil {
		return 0, ErrNilState
	}
	if p.Total < 1 {
		return 0, ErrNoCombinations
	}
	total := int64(p.Total)

	counter := p.Counter
	if counter < Uninitialized {
		counter = Uninitialized
	}

	switch {
	case counter == Uninitialized && p.Autoincrement:
		if s.last == Uninitialized {
			s.last = 0
		} else {
			s.last = advance(s.last, total)
		}
	case counter != Uninitialized:
		if counter != s.last {
			s.last = counter
		} else if p.Autoincrement {
			s.last = advance(s.last, total)
		}
	}

	var index int64
	if p.Shuffle {
		index = mod(s.last, total)
	} else {
		index = seededIndex(p.Seed, s.last, total)
	}
	return int(mod(index, total)), nil
}

// advance returns (last+1) mod total without overflowing on large counters.
func advance(last, total int64) int64 {
	return mod(mod(last, total)+1, total)
}

// mod returns the non-negative remainder of a divided by n.
func mod(a, n int64) int64 {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// pcgStream is the fixed second PCG seed word; only the first word varies.
const pcgStream = 0x9e3779b97f4a7c15

// seededIndex draws one index in [0, total) from a generator keyed by
// seed + last. Identical inputs always give the identical index.
func seededIndex(seed uint64, last, total int64) int64 {
	key := seed + uint64(last)
	rng := rand.New(rand.NewPCG(key, pcgStream))
	return rng.Int64N(total)
}
