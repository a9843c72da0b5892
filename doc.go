// Package main provides the entry point for the IPTV relay.
//
// The relay is a local companion process for an IPTV player. It accepts a
// remote stream URL over its control API, spawns an FFmpeg process that
// remuxes the stream into fragmented MP4, and serves the output on a
// loopback HTTP route the player can consume natively. HLS manifests are
// passed through untouched.
//
// # Application Lifecycle
//
//  1. Configuration Loading: reads environment variables and validates
//     the data and static directories
//  2. Settings Store: opens the SQLite-backed key/value store
//  3. Transcoder: verifies FFmpeg availability (playback of transport
//     streams degrades gracefully without it)
//  4. Relay Server: mounts the control API, stream routes, and static
//     mounts; binds the loopback listener
//  5. Metrics Server: optional Prometheus endpoint on a separate port
//  6. Graceful Shutdown: SIGINT/SIGTERM stops the active session and
//     drains both HTTP servers
//
// At most one transcoding session runs at a time: requesting a new stream
// fully stops the previous session before the new playback URL exists.
package main
