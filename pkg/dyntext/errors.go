package dyntext

import (
	"errors"
	"fmt"
)

// Sentinel errors reported on Result.Err when an evaluation falls back.
var (
	// ErrNoCombinations indicates a template expanded to nothing. Parsed
	// templates always have at least one combination, so this means the
	// expansion was corrupted.
	ErrNoCombinations = errors.New("template has no combinations")

	// ErrCombinationLimit indicates the template exceeded the engine's
	// configured combination limit.
	ErrCombinationLimit = errors.New("combination limit exceeded")
)

// FaultError wraps a failure inside one evaluation step.
type FaultError struct {
	// Op is the step that failed ("parse", "expand", "select").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FaultError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic recovered during evaluation.
type PanicError struct {
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("evaluation panicked: %v", e.Value)
}
