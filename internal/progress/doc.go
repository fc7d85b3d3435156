// Package progress reports scrape progress. The LineReporter prints the
// human-readable "Processed N: url" stream, while the Hub batches structured
// Events on a background goroutine and fans them out to pluggable sinks such
// as structured logs or Prometheus collectors.
package progress
