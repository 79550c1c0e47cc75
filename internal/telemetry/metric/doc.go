// Package metric exposes Prometheus metrics for save, restore, backup and
// autosave activity.
//
// A Registry owns its own prometheus.Registry with the Go runtime and
// process collectors attached. All recording methods are nil-safe, so
// components can take an optional *Registry without guarding every call.
// Metrics are served at /metrics by Handler.
package metric
