// Package metric provides Prometheus metrics for hashguard.
//
//   - prometheus.go: application registry, request metrics and the /metrics handler
//   - collector.go: MapCollector exporting store statistics at scrape time
//
// Metrics are exposed at /metrics in Prometheus text format.
package metric
