package dyntext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/dyntext/pkg/dyntext/observability"
	"github.com/randalmurphal/dyntext/pkg/dyntext/selection"
	"github.com/randalmurphal/dyntext/pkg/dyntext/template"
)

// Engine evaluates templates and owns the counter that persists between
// calls. One Engine corresponds to one host node.
//
// Engine is safe for concurrent use; calls on one Engine are serialized.
// Separate engines share nothing.
type Engine struct {
	mu    sync.Mutex
	state selection.State

	limit    uint64
	expander *template.Expander
	parse    func(string) template.Sequence

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// NewEngine creates an Engine with its counter uninitialized.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		state:   selection.NewState(),
		parse:   template.Parse,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.expander = template.NewExpander(template.WithLimit(e.limit))
	return e
}

// Counter returns the engine's current counter, NoCounter before first use.
func (e *Engine) Counter() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Last()
}

// Reset returns the counter to NoCounter, as if the engine were new.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = selection.NewState()
}

// outcome is the internal result of one evaluation: either a selected
// combination or a fault.
type outcome struct {
	combination template.Combination
	index       int
	total       int
	mode        string
	fault       error
	op          string
}

// Process evaluates req and returns the selected text with the new counter.
//
// Process never fails. If any step faults, the result carries the template
// unchanged, the counter as it was before the call, and the fault in Err;
// the fault is also logged, counted and recorded on the span.
//
// Example:
//
//	engine := dyntext.NewEngine()
//	req := dyntext.NewRequest("{a|b|c}")
//	req.Shuffle = true
//	req.Autoincrement = true
//	res := engine.Process(ctx, req) // "a", counter 0
//	res = engine.Process(ctx, req)  // "b", counter 1
func (e *Engine) Process(ctx context.Context, req Request) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	req = req.normalized()

	ctx, span := e.spans.StartProcessSpan(ctx, len(req.Text))

	e.mu.Lock()
	out := e.evaluate(req)
	counter := e.state.Last()
	e.mu.Unlock()

	duration := time.Since(start)
	if out.fault != nil {
		err := &FaultError{Op: out.op, Err: out.fault}
		observability.LogFallback(e.logger, out.op, err, counter)
		e.metrics.RecordProcess(ctx, out.mode, 0, duration, true)
		e.spans.EndSpanWithError(span, err)
		return Result{
			Text:    req.Text,
			Counter: counter,
			Debug:   "Error processing text: " + err.Error(),
			Err:     err,
		}
	}

	text := out.combination.Text
	if req.Prefix != "" {
		text = strings.TrimSpace(req.Prefix) + " " + text
	}

	observability.LogProcess(e.logger, out.mode, out.index, out.total, counter, out.combination.Path)
	e.metrics.RecordProcess(ctx, out.mode, out.total, duration, false)
	e.spans.AddSpanEvent(ctx, "combination selected",
		attribute.Int("index", out.index),
		attribute.Int("total", out.total),
		attribute.Int64("counter", counter),
	)
	e.spans.EndSpanWithError(span, nil)

	return Result{
		Text:    text,
		Counter: counter,
		Index:   out.index,
		Total:   out.total,
		Path:    out.combination.Path,
		Debug:   debugLine(req.Text, text, out.combination.Path, out.index, out.total),
	}
}

// evaluate runs parse, expand and select. The caller holds e.mu. On a fault
// the counter is restored to its value before the call.
func (e *Engine) evaluate(req Request) (out outcome) {
	saved := e.state
	params := selection.Params{
		Seed:          req.Seed,
		Counter:       req.ExplicitCounter(),
		Shuffle:       req.Shuffle,
		Autoincrement: req.Autoincrement,
	}
	out.mode = params.Mode()
	op := "parse"

	defer func() {
		if v := recover(); v != nil {
			e.state = saved
			out = outcome{
				mode:  params.Mode(),
				op:    op,
				fault: &PanicError{Value: v, Stack: string(debug.Stack())},
			}
		}
	}()

	seq := e.parse(req.Text)

	op = "expand"
	combos, err := e.expander.ExpandPaths(seq)
	if err != nil {
		var limitErr *template.LimitError
		if errors.As(err, &limitErr) {
			err = fmt.Errorf("%w: %w", ErrCombinationLimit, err)
		}
		out.op, out.fault = op, err
		return out
	}
	if len(combos) == 0 {
		out.op, out.fault = op, ErrNoCombinations
		return out
	}

	op = "select"
	params.Total = len(combos)
	index, err := selection.Select(params, &e.state)
	if err != nil {
		e.state = saved
		out.op, out.fault = op, err
		return out
	}
	index %= len(combos)

	out.combination = combos[index]
	out.index = index
	out.total = len(combos)
	return out
}
