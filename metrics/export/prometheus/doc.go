// Package prometheus provides Prometheus collectors for abcookie metrics.
//
// [NewPrometheusExporter] accepts an [abcookie.Manager] and exposes an
// [http.Handler] that renders all abcookie counters and histograms in
// Prometheus text exposition format. Counter names are prefixed
// abcookie_*_total; the single histogram is abcookie_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate manager state.
package prometheus
