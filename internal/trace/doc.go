// Package trace provides level-gated tracing for cfnfmt runs.
//
// Tracing answers "where did the time go" and "which pass rewrote this file"
// without a logging library: events are spans (begin/end pairs) and points,
// written to a stream as text or NDJSON.
//
// # Usage
//
//	cfnfmt --trace=- --trace-level=detail templates/
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: reserved for failures
//   - LevelPhase: driver and per-file boundaries
//   - LevelDetail: formatting passes
//   - LevelDebug: everything, including single moves and indentation fixes
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "reorder", parentID)
//	defer span.End("")
package trace
