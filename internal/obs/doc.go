// Package obs wires process-level observability: structured zap logging,
// prometheus exposure for the engine counters, and optional OTLP tracing.
package obs
