// Package history records the text each node produced in each generation
// cycle.
//
// History is an audit trail. It is never read back into an engine: counters
// live only in memory and start over when an engine is recreated.
package history

import (
	"errors"
	"time"
)

// Store persists generated outputs.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores an entry. The store assigns Sequence, and Timestamp
	// when it is zero.
	Append(e Entry) error

	// List returns all entries of a run, ordered by sequence.
	// Returns empty slice (not error) if the run has no entries.
	List(runID string) ([]Entry, error)

	// Last returns the most recent entry of a node within a run.
	// Returns ErrNotFound if there is none.
	Last(runID, nodeID string) (Entry, error)

	// DeleteRun removes all entries of a run.
	// Returns nil if the run has no entries.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Entry is one node evaluation within a run.
type Entry struct {
	RunID    string
	Sequence int
	Cycle    int
	NodeID   string
	Template string
	Text     string
	Counter  int64
	Index    int
	Total    int
	Path     string
	// Cached is true when the host reused the previous output.
	Cached bool
	// Error holds the fallback reason, empty on success.
	Error     string
	Timestamp time.Time
}

// Sentinel errors for history operations.
var (
	// ErrNotFound indicates no matching entry exists.
	ErrNotFound = errors.New("history entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("history store closed")
)
