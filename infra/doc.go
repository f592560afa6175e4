// Package infra contains technical adapters: CSV dataset loaders, the
// zerolog logger, metrics exporters, run stores, the MQTT publisher and
// Sentry monitoring. These packages depend only on the interfaces defined
// in the core packages.
package infra
