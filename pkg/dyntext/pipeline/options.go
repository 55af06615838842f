package pipeline

import (
	"log/slog"

	"github.com/randalmurphal/dyntext/pkg/dyntext/history"
	"github.com/randalmurphal/dyntext/pkg/dyntext/observability"
	"github.com/randalmurphal/dyntext/pkg/dyntext/registry"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for cycle records. Engines created by the
// default registry log through it too, tagged with their node ID.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHistory records every node output to store.
// Default: nil (no history)
func WithHistory(store history.Store) Option {
	return func(r *Runner) {
		r.history = store
	}
}

// WithRegistry supplies the engine registry, for hosts that configure
// engines themselves.
// Default: a registry of engines sharing the runner's observability
func WithRegistry(engines *registry.Instances) Option {
	return func(r *Runner) {
		r.engines = engines
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
// Default: disabled
func WithMetrics() Option {
	return func(r *Runner) {
		r.metrics = observability.NewMetricsRecorder()
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
// Default: disabled
func WithTracing() Option {
	return func(r *Runner) {
		r.spans = observability.NewSpanManager()
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(r *Runner) {
		if sm != nil {
			r.spans = sm
		}
	}
}
