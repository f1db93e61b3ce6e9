// Package metrics exposes sweep instrumentation as Prometheus metrics and
// reads Go runtime memory statistics.
package metrics
