// Package observe provides observability primitives for the dashboard data
// layer.
//
// It is a pure instrumentation library: a JSON structured logger, OpenTelemetry
// tracing and metrics for document-store queries, and counters for cache
// events. Consumers wire the observer into the data source and cache engine.
package observe
