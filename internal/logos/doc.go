// Package logos caches channel artwork referenced by IPTV playlists.
//
// Playlist tvg-logo URLs point at arbitrary provider hosts that are slow,
// flaky, or gone. The cache downloads each logo once, normalizes it to a
// bounded PNG, and serves it from local disk thereafter, so the player UI
// never waits on a provider. A worker pool can warm the cache for a whole
// channel list right after a playlist loads.
package logos
