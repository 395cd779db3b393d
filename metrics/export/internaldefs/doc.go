// Package internaldefs holds the shared metric name/help definitions used by
// the Prometheus and OpenTelemetry exporters. It exists so both exporters
// render identical metric names without either importing the other.
package internaldefs
