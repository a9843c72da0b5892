/*
Package relay implements the local HTTP server that media players connect
to.

The server binds a loopback address and exposes three kinds of routes:

  - /mp4/{id}: dynamic per-session stream routes, registered and
    deregistered by the session manager. Unknown ids get a 404 so stale
    player URLs fail fast after a session ends.
  - /hls/: an optional static mount for locally written playlist
    artifacts, served with cache-defeating headers and without directory
    listings.
  - anything the caller mounts through Router, typically the control API
    and health endpoints.

The listener starts lazily: New only builds the router, and the first
EnsureStarted call binds the port. That keeps the port free until a
stream is actually requested and surfaces bind failures on the request
path where they can be reported to the caller.
*/
package relay
