package mediatypes

import (
	"net/url"
	"path"
	"strings"
)

// StreamKind categorizes a source URL by how a browser-capable player can
// consume it.
type StreamKind string

const (
	// StreamManifest is an adaptive-playback manifest (HLS playlist) that a
	// player consumes directly without server-side remuxing.
	StreamManifest StreamKind = "manifest"
	// StreamTransport is a raw transport or elementary stream that needs the
	// local relay to remux it into a browser-playable container.
	StreamTransport StreamKind = "transport"
	// StreamUnknown is anything else. Unknown sources are routed through the
	// relay as well, since a direct URL that the player could have handled
	// still plays correctly after a remux.
	StreamUnknown StreamKind = "unknown"
)

// ManifestExtensions are URL path extensions that identify manifest-style
// streams.
var ManifestExtensions = map[string]bool{
	".m3u8": true,
}

// TransportExtensions are URL path extensions that identify raw transport
// streams.
var TransportExtensions = map[string]bool{
	".ts":     true,
	".mts":    true,
	".m2ts":   true,
	".mpegts": true,
}

// RelayContentType is the Content-Type of the relay's remuxed output
// (fragmented MP4).
const RelayContentType = "video/mp4"

// KindOf classifies a source URL. Query strings and fragments are ignored;
// only the path extension is considered. Unparseable URLs are StreamUnknown.
func KindOf(rawURL string) StreamKind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return StreamUnknown
	}

	ext := strings.ToLower(path.Ext(u.Path))
	switch {
	case ManifestExtensions[ext]:
		return StreamManifest
	case TransportExtensions[ext]:
		return StreamTransport
	}
	return StreamUnknown
}

// IsManifest reports whether the URL points at a manifest-style stream that
// should bypass the relay entirely.
func IsManifest(rawURL string) bool {
	return KindOf(rawURL) == StreamManifest
}

// IsPlayableURL reports whether the URL is an absolute http or https URL.
// Anything else is rejected before a session or process is created.
func IsPlayableURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
