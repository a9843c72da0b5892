package playlist

import (
	"regexp"
	"strings"
)

// Channel is one playable entry from an IPTV playlist.
type Channel struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Logo  string `json:"logo,omitempty"`
	Group string `json:"group,omitempty"`
}

// extinfAttr matches key="value" attribute pairs on an #EXTINF line, e.g.
// tvg-name="BBC One" tvg-logo="http://..." group-title="News".
var extinfAttr = regexp.MustCompile(`([a-zA-Z0-9-]+)="(.*?)"`)

// IsM3U reports whether the text looks like an extended M3U playlist.
// Providers are sloppy about leading whitespace and BOMs, so this trims
// before checking the header.
func IsM3U(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(text, "\ufeff")), "#EXTM3U")
}

// Parse extracts channels from extended M3U playlist text. Each #EXTINF
// directive carries the channel metadata; the next non-comment line is its
// stream URL. Directives without a following URL, and URLs without a
// preceding directive, are dropped. Parsing never fails; malformed input
// just yields fewer channels.
func Parse(text string) []Channel {
	var channels []Channel
	var pending *Channel

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#EXTINF") {
			attrs := make(map[string]string)
			for _, m := range extinfAttr.FindAllStringSubmatch(line, -1) {
				attrs[m[1]] = m[2]
			}

			// Display name is everything after the last comma; fall back
			// to the tvg-name attribute.
			name := ""
			if idx := strings.LastIndex(line, ","); idx >= 0 {
				name = strings.TrimSpace(line[idx+1:])
			}
			if name == "" {
				name = attrs["tvg-name"]
			}
			if name == "" {
				name = "Unknown"
			}

			group := attrs["group-title"]
			if group == "" {
				group = "Other"
			}

			pending = &Channel{
				Name:  name,
				Logo:  attrs["tvg-logo"],
				Group: group,
			}
		} else if !strings.HasPrefix(line, "#") && pending != nil {
			pending.URL = line
			channels = append(channels, *pending)
			pending = nil
		}
	}

	return channels
}

// Load turns fetched playlist text into a channel list. Non-M3U content is
// treated as a single direct stream at sourceURL, so a bare stream URL can
// be "loaded" like a one-channel playlist.
func Load(text, sourceURL string) []Channel {
	if IsM3U(text) {
		return Parse(text)
	}
	return []Channel{{Name: "Direct Stream", URL: sourceURL}}
}
