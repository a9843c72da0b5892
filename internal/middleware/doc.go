// Package middleware provides the HTTP middleware chain for the relay
// server.
//
//   - CORS: the permissive cross-origin policy every relay response carries
//     (the embedded player runs on a different origin than the loopback
//     relay).
//   - NoCache: cache-defeating headers for static segment routes whose
//     files may be rewritten in place.
//   - Logger: access logging with user-controlled fields sanitized against
//     log injection. Static and health-check paths can be excluded.
//   - Metrics: Prometheus request counters and durations with dynamic path
//     segments collapsed to keep label cardinality bounded.
//
// All wrappers forward http.Flusher so streaming responses stay unbuffered
// through the chain.
package middleware
