// Package metrics exposes the async controller's counters and gauges
// as a Prometheus collector.
//
// The collector reads the controller on every scrape; nothing is
// updated on the logging hot path beyond the atomic counters the
// controller maintains anyway.
package metrics
