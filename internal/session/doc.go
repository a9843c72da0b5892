/*
Package session enforces the relay's single-session model.

A Session is one logical binding of a source URL to one transcoding process
and one externally reachable route. The Manager owns at most one
non-stopped session at any time: a Start first fully stops the previous
session (process signaled, route deregistered) before the replacement's
route exists, so there is one live transcoder process system-wide.

# Lifecycle

	Idle -> Starting -> Streaming -> Stopped

Starting a session registers its route and returns the local URL
immediately; the process is spawned when the first client connects. Any of
process exit, client disconnect, explicit Stop, or a superseding Start
moves the session to Stopped, which is terminal. The spawn is bound to the
session, not to each connection: a second concurrent consumer of the same
route is rejected with a conflict status instead of spawning a second
process.

# Session ids

Route ids are 128-bit cryptographically random hex tokens. The id is the
only access control on the route, so guessability is the threat model;
tokens are never reused.

# Concurrency

All session mutation goes through the Manager's mutex. Stop is idempotent
and safe to race against the disconnect teardown that runs on the handler
goroutine; whichever side retires the session first wins and the other
becomes a no-op.
*/
package session
