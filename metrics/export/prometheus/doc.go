// Package prometheus renders wsession metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [wsession.Engine] and exposes an
// [net/http.Handler] that renders all counters. Counter names are prefixed
// wsession_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
