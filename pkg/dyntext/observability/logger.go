// Package observability provides logging, metrics and tracing for dyntext:
// structured logging via slog, metrics and tracing via OpenTelemetry.
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds the host node ID to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "42")
//	enriched.Info("doing work") // includes node_id
func EnrichLogger(logger *slog.Logger, nodeID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("node_id", nodeID))
}

// LogProcess logs a successful template evaluation.
func LogProcess(logger *slog.Logger, mode string, index, total int, counter int64, path string) {
	if logger == nil {
		return
	}
	logger.Debug("template processed",
		slog.String("mode", mode),
		slog.Int("combination", index+1),
		slog.Int("total", total),
		slog.Int64("counter", counter),
		slog.String("path", path),
	)
}

// LogFallback logs a failed evaluation that returned the input unchanged.
func LogFallback(logger *slog.Logger, op string, err error, counter int64) {
	if logger == nil {
		return
	}
	logger.Warn("template processing failed, returning input",
		slog.String("operation", op),
		slog.String("error", err.Error()),
		slog.Int64("counter", counter),
	)
}

// LogCycleStart logs the start of a generation cycle.
func LogCycleStart(logger *slog.Logger, runID string, cycle int) {
	if logger == nil {
		return
	}
	logger.Info("cycle starting",
		slog.String("run_id", runID),
		slog.Int("cycle", cycle),
	)
}

// LogCycleComplete logs a finished generation cycle.
func LogCycleComplete(logger *slog.Logger, runID string, cycle, evaluated, cached int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("cycle completed",
		slog.String("run_id", runID),
		slog.Int("cycle", cycle),
		slog.Int("evaluated", evaluated),
		slog.Int("cached", cached),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNodeCached logs a node whose output was reused from the previous cycle.
func LogNodeCached(logger *slog.Logger, nodeID string) {
	if logger == nil {
		return
	}
	logger.Debug("node cached",
		slog.String("node_id", nodeID),
	)
}

// LogHistoryError logs a history store failure (non-fatal).
func LogHistoryError(logger *slog.Logger, nodeID string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("history failed",
		slog.String("node_id", nodeID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
