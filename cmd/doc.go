// Package cmd defines the xpath-scraper command line.
//
// Architecture overview:
//   - Input: internal/table reads the URL column of the input CSV. The XPath expression comes from --xpath, the
//     query config key, or an interactive prompt on stdin.
//   - Dispatcher & queue: URLs flow through a bounded in-memory queue to a fixed worker pool sized by
//     scraper.max_workers. A single coordinator goroutine collects outcomes, owns the progress counter and prints
//     "Processed N: url" lines.
//   - Fetch pipeline: workers fetch through the Colly-based fetcher with a per-request timeout, then evaluate the
//     expression with htmlquery. Every URL yields exactly one outcome, whatever fails.
//   - Output: outcomes are written in completion order to the URL,Information CSV once every URL is done.
//   - Observability: zap logs go to stderr so stdout carries only the progress stream; the progress Hub batches run
//     events to a Prometheus sink (optionally dumped to a textfile) and, when enabled, a log sink.
//
// Quick checklist:
//   - Configure via flags, a YAML file (--config), a .env file, or SCRAPER_* environment variables such as
//     SCRAPER_SCRAPER_MAX_WORKERS or SCRAPER_HTTP_TIMEOUT_SECONDS.
//   - Run locally: go run . --input input-urls.csv --xpath '//h1/text()'
package cmd
