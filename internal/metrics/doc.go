// Package metrics defines the Prometheus metrics exported by the relay.
//
// Metrics are registered via promauto at package load and served by the
// optional metrics server (METRICS_PORT). Families cover the HTTP surface
// (request counts, durations, in-flight), transcoding sessions (starts,
// supersedes, stop reasons, lifetime), the external transcoder process
// (spawns, exits, bytes relayed), the settings store, playlist loading, and
// the logo cache.
//
// Call InitializeMetrics once at startup to pre-populate label combinations
// so all families appear in the first scrape.
package metrics
