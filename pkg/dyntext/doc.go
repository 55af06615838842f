/*
Package dyntext generates text from alternation templates.

# Overview

A template holds {option|option} groups that may nest:

	Hello {fast|slow|{small|huge}} {green|red|blue} car!

An Engine parses the template, enumerates every combination and picks one
per call. The pick is reproducible: it depends only on the request and on a
counter the Engine keeps between calls.

# Basic Usage

	engine := dyntext.NewEngine()

	req := dyntext.NewRequest("Hello {fast|slow} car!")
	req.Seed = 42
	res := engine.Process(ctx, req)
	fmt.Println(res.Text, res.Counter)

# Selection Modes

Seeded (default): the index is drawn from a generator keyed by
Seed + counter. The same seed and counter always give the same text.

Shuffle: the index is counter mod total, cycling through the combinations
in order.

Autoincrement: combined with either mode, the counter advances by one on
every call. A fresh engine starts at 0:

	req := dyntext.NewRequest("{a|b|c}")
	req.Shuffle = true
	req.Autoincrement = true
	// successive calls: a, b, c, a, ...

An explicit counter, set with Request.SetCounter, is adopted as-is when it
differs from the engine's counter. A zero Request carries none. When the host feeds back the counter it just received, the engine
advances once if autoincrement is on and stays put otherwise.

# Host Integration

The returned Counter is the engine's new counter; hosts display it or pass
it back on the next call with SetCounter. ForceReevaluate and ChangeKey tell a caching host
when an evaluation must run even though the inputs did not change.

# Failures

Process never fails. Malformed templates such as an unclosed group are
treated as literal text. Internal faults (a panic, an exceeded combination
limit) return the template unchanged with the previous counter, and the
fault is reported on Result.Err, the logger, metrics and the trace span.

# Thread Safety

Engine is safe for concurrent use. Calls on one Engine are serialized so the
counter update is atomic; separate engines are independent.
*/
package dyntext
