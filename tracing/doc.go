// Package tracing records kernel operations such as boot, fork, clone, wait
// and snapshot saves as OpenTelemetry spans. Spans are no-ops until Init or
// InitWithExporter installs an exporter; Shutdown flushes it.
package tracing
