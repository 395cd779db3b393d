// Package otel provides OpenTelemetry metric exporter bindings for wsession
// counters.
//
// [NewOTelExporter] registers an Int64ObservableCounter per wsession metric.
// A single callback reads [wsession.Engine.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel
