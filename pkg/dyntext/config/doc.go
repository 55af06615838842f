/*
Package config provides type-safe configuration extraction from map[string]any
and decodes dyntext pipeline files.

# Overview

Config wraps a map[string]any and provides typed accessors that return a
default on missing keys or type mismatches, so YAML and JSON structures can be
read without verbose type assertions.

	cfg := config.New(map[string]any{
	    "seed":    42,
	    "shuffle": true,
	})

	seed := cfg.Uint64("seed", 0)            // 42
	shuffle := cfg.Bool("shuffle", false)    // true
	counter := cfg.Int64("counter", -1)      // -1
	prefix := cfg.String("prefix", "")       // ""

# Type Coercion

Numeric accessors accept int, int64, uint64 and float64. A float64 with a
fractional part, or a value out of range for the requested type, yields the
default.

# Pipeline Files

LoadPipeline reads a YAML or JSON file listing template nodes:

	cycles: 4
	history: ./history.db
	nodes:
	  - id: subject
	    text: "Hello {fast|slow|{small|huge}} {green|red|blue} car!"
	    seed: 42
	  - id: style
	    text: "{oil|watercolor|pencil}"
	    shuffle: true
	    autoincrement: true
	    prefix: "in the style of"

Node fields default to seed 0, counter -1, seeded mode, no autoincrement and
no prefix. Every node needs a unique id.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
