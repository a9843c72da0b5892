// Package playlist parses IPTV channel lists.
//
// The only supported format is extended M3U (#EXTM3U), the de facto
// standard for IPTV providers. Parsing is deliberately forgiving: real
// provider playlists mix line endings, omit attributes, and interleave
// unknown directives, and a bad entry should cost one channel, not the
// whole list. Content that is not an M3U playlist is treated as a single
// direct stream.
package playlist
