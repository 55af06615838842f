// Package pipeline runs generation cycles over a set of template nodes the
// way a host graph does.
//
// Each cycle evaluates every node in order. A node whose inputs did not
// change since its last evaluation reuses its previous output, unless
// autoincrement forces it to run. A node configured with an explicit
// counter receives the counter its engine returned, so the next cycle
// continues from there.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/dyntext/pkg/dyntext"
	"github.com/randalmurphal/dyntext/pkg/dyntext/config"
	"github.com/randalmurphal/dyntext/pkg/dyntext/history"
	"github.com/randalmurphal/dyntext/pkg/dyntext/observability"
	"github.com/randalmurphal/dyntext/pkg/dyntext/registry"
)

// NodeOutput is one node's output in one cycle.
type NodeOutput struct {
	NodeID string
	Result dyntext.Result
	// Cached is true when the previous output was reused.
	Cached bool
}

// Cycle holds the outputs of one generation cycle, in node order.
type Cycle struct {
	Number  int
	Outputs []NodeOutput
}

// Report is the outcome of Run.
type Report struct {
	RunID  string
	Cycles []Cycle
}

// cached is the memoized output of one node.
type cached struct {
	key    any
	result dyntext.Result
}

// Runner evaluates pipeline nodes cycle after cycle.
//
// A Runner keeps its engines and output cache between Run calls, the way a
// host keeps node state between prompts. Runner is not safe for concurrent
// use.
type Runner struct {
	engines *registry.Instances
	history history.Store

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	cache    map[string]cached
	counters map[string]int64
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		cache:    make(map[string]cached),
		counters: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.engines == nil {
		logger, metrics, spans := r.logger, r.metrics, r.spans
		r.engines = registry.New(func(nodeID string) *dyntext.Engine {
			return dyntext.NewEngine(
				dyntext.WithLogger(observability.EnrichLogger(logger, nodeID)),
				dyntext.WithMetricsRecorder(metrics),
				dyntext.WithSpanManager(spans),
			)
		})
	}
	return r
}

// Engines returns the registry holding one engine per node.
func (r *Runner) Engines() *registry.Instances {
	return r.engines
}

// Run executes p.Cycles cycles over p.Nodes.
//
// Evaluation failures never stop a run; they surface as fallback results.
// History failures are logged and skipped. Run stops early only when ctx
// is cancelled, returning the completed cycles and the context error.
//
// Example:
//
//	p, _ := config.LoadPipeline("pipeline.yaml")
//	report, err := pipeline.New().Run(ctx, p)
func (r *Runner) Run(ctx context.Context, p config.Pipeline) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cycles := p.Cycles
	if cycles < 1 {
		cycles = 1
	}

	report := Report{
		RunID:  uuid.NewString(),
		Cycles: make([]Cycle, 0, cycles),
	}

	for n := 1; n <= cycles; n++ {
		select {
		case <-ctx.Done():
			return report, fmt.Errorf("cycle %d: %w", n, ctx.Err())
		default:
		}
		report.Cycles = append(report.Cycles, r.runCycle(ctx, report.RunID, n, p.Nodes))
	}
	return report, nil
}

// runCycle evaluates every node once.
func (r *Runner) runCycle(ctx context.Context, runID string, n int, nodes []config.NodeSpec) Cycle {
	done := observability.TimedOperation()
	start := time.Now()
	observability.LogCycleStart(r.logger, runID, n)

	ctx, span := r.spans.StartCycleSpan(ctx, runID, n)
	defer r.spans.EndSpanWithError(span, nil)

	cycle := Cycle{Number: n, Outputs: make([]NodeOutput, 0, len(nodes))}
	evaluated, hits := 0, 0
	for _, node := range nodes {
		out := r.evaluate(ctx, node)
		if out.Cached {
			hits++
		} else {
			evaluated++
		}
		r.record(runID, n, node, out)
		cycle.Outputs = append(cycle.Outputs, out)
	}

	r.spans.AddSpanEvent(ctx, "cycle complete",
		attribute.Int("evaluated", evaluated),
		attribute.Int("cached", hits),
	)
	r.metrics.RecordCycle(ctx, evaluated, hits, time.Since(start))
	observability.LogCycleComplete(r.logger, runID, n, evaluated, hits, done())
	return cycle
}

// evaluate runs one node, or reuses its cached output.
func (r *Runner) evaluate(ctx context.Context, node config.NodeSpec) NodeOutput {
	req := r.request(node)
	key := dyntext.ChangeKey(req)

	if prev, ok := r.cache[node.ID]; ok && !dyntext.ForceReevaluate(req) && prev.key == key {
		observability.LogNodeCached(r.logger, node.ID)
		r.metrics.RecordCacheHit(ctx, node.ID)
		return NodeOutput{NodeID: node.ID, Result: prev.result, Cached: true}
	}

	res := r.engines.GetOrCreate(node.ID).Process(ctx, req)
	r.cache[node.ID] = cached{key: key, result: res}
	if req.HasCounter && res.Counter != dyntext.NoCounter {
		r.counters[node.ID] = res.Counter
	}
	return NodeOutput{NodeID: node.ID, Result: res}
}

// request builds the node's request, substituting the fed-back counter for
// nodes that carry an explicit one.
func (r *Runner) request(node config.NodeSpec) dyntext.Request {
	req := dyntext.NewRequest(node.Text)
	req.Seed = node.Seed
	req.SetCounter(node.Counter)
	req.Shuffle = node.Shuffle
	req.Autoincrement = node.Autoincrement
	req.Prefix = node.Prefix

	if req.HasCounter {
		if fed, ok := r.counters[node.ID]; ok {
			req.SetCounter(fed)
		}
	}
	return req
}

// record appends one output to the history store, if any.
func (r *Runner) record(runID string, n int, node config.NodeSpec, out NodeOutput) {
	if r.history == nil {
		return
	}
	entry := history.Entry{
		RunID:    runID,
		Cycle:    n,
		NodeID:   node.ID,
		Template: node.Text,
		Text:     out.Result.Text,
		Counter:  out.Result.Counter,
		Index:    out.Result.Index,
		Total:    out.Result.Total,
		Path:     out.Result.Path,
		Cached:   out.Cached,
	}
	if out.Result.Err != nil {
		entry.Error = out.Result.Err.Error()
	}
	if err := r.history.Append(entry); err != nil {
		observability.LogHistoryError(r.logger, node.ID, "append", err)
	}
}

// Reset forgets cached outputs, fed-back counters and engines.
func (r *Runner) Reset() {
	for _, id := range r.engines.IDs() {
		r.engines.Remove(id)
	}
	r.cache = make(map[string]cached)
	r.counters = make(map[string]int64)
}
