package dyntext

import (
	"log/slog"

	"github.com/randalmurphal/dyntext/pkg/dyntext/observability"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger that receives evaluation and fallback records.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
// Default: disabled
//
// Example:
//
//	otel.SetMeterProvider(provider)
//	engine := dyntext.NewEngine(dyntext.WithMetrics())
func WithMetrics() Option {
	return func(e *Engine) {
		e.metrics = observability.NewMetricsRecorder()
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
// Default: disabled
func WithTracing() Option {
	return func(e *Engine) {
		e.spans = observability.NewSpanManager()
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(e *Engine) {
		if sm != nil {
			e.spans = sm
		}
	}
}

// WithCombinationLimit makes templates with more than n combinations fall
// back to their input instead of being expanded.
// Default: 0 (no limit)
func WithCombinationLimit(n uint64) Option {
	return func(e *Engine) {
		e.limit = n
	}
}
