// Package telem ties logs, traces, and run identity together through the
// context, so any component producing an output can log with the run's
// decorations without threading a logger through every call.
package telem

import (
	"context"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"go.opencensus.io/trace"
)

// ctxKey is a private type, only constructable by this package, which helps
// namespace values we store in a context. We use a string instead of ints as
// they are far more debuggable when spewing the context.
type ctxKey string

const (
	loggerKey = ctxKey("LoggerKey")
	runIDKey  = ctxKey("RunIDKey")
)

// WithLogger stashes a logger that LoggerFrom can retrieve downstream.
func WithLogger(ctx context.Context, logger kitlog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFrom retrieves the stashed logger, decorated with any given keyvals.
// A context without a logger gets a logfmt logger on stderr rather than a
// nop, as losing diagnostics silently is worse than an unconfigured format.
func LoggerFrom(ctx context.Context, keyvals ...interface{}) kitlog.Logger {
	logger, ok := ctx.Value(loggerKey).(kitlog.Logger)
	if !ok {
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	}

	if len(keyvals) > 0 {
		logger = kitlog.With(logger, keyvals...)
	}

	return logger
}

// WithRunID tags the context with the identifier of the current run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFrom returns the current run identifier, or an empty string outside a
// run.
func RunIDFrom(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey).(string)
	return runID
}

// StartSpan opens a span and returns a logger tied to it via trace_id, so
// logs can be matched to the trace that produced them.
func StartSpan(ctx context.Context, name string) (context.Context, *trace.Span, kitlog.Logger) {
	ctx, span := trace.StartSpan(ctx, name)
	logger := LoggerFrom(ctx, "trace_id", span.SpanContext().TraceID)

	return ctx, span, logger
}
