package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline files.
var (
	// ErrNoNodes indicates the file has no usable "nodes" list.
	ErrNoNodes = errors.New("config has no nodes list")

	// ErrNodeID indicates a node without an id, or with a duplicate id.
	ErrNodeID = errors.New("invalid node id")
)

// NodeSpec describes one template node of a pipeline file.
type NodeSpec struct {
	ID            string
	Text          string
	Seed          uint64
	Counter       int64
	Shuffle       bool
	Autoincrement bool
	Prefix        string
}

// Pipeline is a decoded pipeline file.
type Pipeline struct {
	// Cycles is the number of generation cycles to run. Default 1.
	Cycles int
	// History is the path of the SQLite history database, empty for none.
	History string
	// Nodes are the template nodes, in file order.
	Nodes []NodeSpec
}

// Node reads one node entry. Missing fields take the request defaults:
// seed 0, counter -1, seeded mode, no autoincrement, no prefix.
func Node(c Config) NodeSpec {
	return NodeSpec{
		ID:            c.String("id", ""),
		Text:          c.String("text", ""),
		Seed:          c.Uint64("seed", 0),
		Counter:       c.Int64("counter", -1),
		Shuffle:       c.Bool("shuffle", false),
		Autoincrement: c.Bool("autoincrement", false),
		Prefix:        c.String("prefix", ""),
	}
}

// DecodePipeline reads cycles, history and nodes from c.
//
// Example file:
//
//	cycles: 3
//	history: ./history.db
//	nodes:
//	  - id: subject
//	    text: "Hello {fast|slow} car!"
//	    shuffle: true
//	    autoincrement: true
func DecodePipeline(c Config) (Pipeline, error) {
	entries, ok := c.List("nodes")
	if !ok || len(entries) == 0 {
		return Pipeline{}, ErrNoNodes
	}

	p := Pipeline{
		Cycles:  c.Int("cycles", 1),
		History: c.String("history", ""),
		Nodes:   make([]NodeSpec, 0, len(entries)),
	}
	if p.Cycles < 1 {
		p.Cycles = 1
	}

	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		spec := Node(entry)
		if spec.ID == "" {
			return Pipeline{}, fmt.Errorf("node %d: %w: missing", i, ErrNodeID)
		}
		if seen[spec.ID] {
			return Pipeline{}, fmt.Errorf("node %d: %w: duplicate %q", i, ErrNodeID, spec.ID)
		}
		seen[spec.ID] = true
		p.Nodes = append(p.Nodes, spec)
	}
	return p, nil
}
