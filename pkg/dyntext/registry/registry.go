// Package registry keeps one dyntext.Engine per host node.
//
// Each node of the host graph needs its own counter, so the host looks up
// the node's engine by ID on every evaluation. Removing a node drops its
// engine; a node added again under the same ID starts fresh.
package registry

import (
	"sort"
	"sync"

	"github.com/randalmurphal/dyntext/pkg/dyntext"
)

// Factory builds the engine for a newly seen node.
type Factory func(nodeID string) *dyntext.Engine

// Instances is a thread-safe map from node ID to engine.
// It uses sync.RWMutex for read-heavy workloads.
type Instances struct {
	mu      sync.RWMutex
	engines map[string]*dyntext.Engine
	factory Factory
}

// New creates an empty registry. A nil factory builds engines with
// dyntext.NewEngine and no options.
func New(factory Factory) *Instances {
	if factory == nil {
		factory = func(string) *dyntext.Engine {
			return dyntext.NewEngine()
		}
	}
	return &Instances{
		engines: make(map[string]*dyntext.Engine),
		factory: factory,
	}
}

// Get returns the engine for a node and whether it exists.
func (r *Instances) Get(nodeID string) (*dyntext.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[nodeID]
	return e, ok
}

// GetOrCreate returns the engine for a node, creating it with the factory
// if it doesn't exist. The factory is called at most once per node, even
// under concurrent access.
func (r *Instances) GetOrCreate(nodeID string) *dyntext.Engine {
	r.mu.RLock()
	e, ok := r.engines[nodeID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if e, ok := r.engines[nodeID]; ok {
		return e
	}
	e = r.factory(nodeID)
	r.engines[nodeID] = e
	return e
}

// Remove drops a node's engine. Returns false if the node was unknown.
func (r *Instances) Remove(nodeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.engines[nodeID]
	delete(r.engines, nodeID)
	return ok
}

// IDs returns the registered node IDs in sorted order.
func (r *Instances) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered nodes.
func (r *Instances) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

// Counters returns a snapshot of every node's current counter.
func (r *Instances) Counters() map[string]int64 {
	r.mu.RLock()
	snapshot := make(map[string]*dyntext.Engine, len(r.engines))
	for id, e := range r.engines {
		snapshot[id] = e
	}
	r.mu.RUnlock()

	// Read counters without holding the registry lock.
	counters := make(map[string]int64, len(snapshot))
	for id, e := range snapshot {
		counters[id] = e.Counter()
	}
	return counters
}
