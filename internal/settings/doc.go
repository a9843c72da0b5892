// Package settings persists user-scoped application state in SQLite.
//
// The schema is a single key/value table with JSON values, which covers
// everything the relay needs to remember between runs: the last playlist
// URL, the cached channel list, and any player preferences. JSON values
// let structured data round-trip without per-feature tables while keeping
// the store queryable with ordinary SQL tooling.
package settings
