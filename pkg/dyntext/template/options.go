package template

// Option configures an Expander.
type Option func(*Expander)

// WithLimit caps the number of combinations Expand will build.
//
// Default: 0 (no limit)
//
// Example:
//
//	exp := NewExpander(WithLimit(2))
//	_, err := exp.Expand(Parse("{a|b|c}"))
//	// err: "template has 3 combinations, limit is 2"
func WithLimit(n uint64) Option {
	return func(e *Expander) {
		e.limit = n
	}
}
