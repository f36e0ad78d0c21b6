// Package tracing wraps OpenTelemetry for the task queue. Submit and dispatch
// open producer and consumer spans; nothing is exported until Init (or
// InitWithExporter) installs a provider, so unconfigured applications pay for
// no-op spans only.
package tracing
