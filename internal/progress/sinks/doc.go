// Package sinks implements progress consumers for structured logging and
// Prometheus collectors. Each sink satisfies progress.Sink.
package sinks
