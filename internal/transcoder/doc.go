// Package transcoder wraps the external decode/re-encode process that turns
// a raw transport stream into a browser-playable fragmented MP4.
//
// Each Start spawns exactly one process with a fixed argument template:
// read the source URL with reconnect-on-error enabled, copy the video
// elementary stream without re-encoding, re-encode audio to AAC at a fixed
// bitrate and channel count, and emit fragmented MP4 on stdout. No
// intermediate file is written; output is playable as it arrives, which a
// live source requires since its total duration is unknown.
//
// The caller owns the returned Process. Relay streams its output to an
// HTTP response and guarantees termination on every exit path: process
// exit, client disconnect, stalled client, and a silent process caught by
// the idle watchdog. Stop is idempotent and escalates from SIGTERM to
// SIGKILL after a grace period.
//
// Transcoding is performed using FFmpeg and requires it to be installed
// and available in the system PATH (or named via FFMPEG_PATH).
package transcoder
