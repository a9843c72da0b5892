// Package startup handles configuration loading and startup logging for the
// relay.
//
// Configuration comes from environment variables:
//
//   - RELAY_HOST: interface the relay binds to (default: 127.0.0.1)
//   - RELAY_PORT: relay server port (default: 39221)
//   - HLS_DIR: root directory for pre-segmented HLS assets
//   - DATA_DIR: directory for the settings store and logo cache
//   - METRICS_PORT: metrics server port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - FFMPEG_PATH: explicit ffmpeg binary path (default: resolve via PATH)
//   - AUDIO_BITRATE: audio re-encode bitrate (default: 128k)
//   - AUDIO_CHANNELS: audio channel count (default: 2)
//   - RECONNECT_DELAY_MAX: upstream reconnect cap in seconds (default: 5)
//   - LOG_STATIC_FILES, LOG_HEALTH_CHECKS, LOG_LEVEL: logging behavior
//
// The package also owns build metadata (Version, Commit, BuildTime, injected
// via -ldflags), the startup banner, the ffmpeg availability check, and the
// structured startup/shutdown log sections used by main.
package startup
