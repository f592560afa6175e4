// Package metrics defines the sinks that receive completed allocation runs.
// Implementations live in infra/metrics (Prometheus, InfluxDB) and register
// themselves by name so that NewSink can build them from configuration.
// Several configured sinks are combined with a MultiSink.
package metrics
