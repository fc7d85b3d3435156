// Package scrape defines the core types shared by the fetch, extract, worker,
// and dispatcher subsystems of the xpath scraper.
package scrape
