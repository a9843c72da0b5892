package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"iptv-relay/internal/logging"
	"iptv-relay/internal/metrics"
	"iptv-relay/internal/playlist"
	"iptv-relay/internal/settings"
)

// loadPlaylistRequest is the body of POST /api/playlist/load.
type loadPlaylistRequest struct {
	URL string `json:"url"`
	// Refresh forces a refetch even when a cached channel list exists.
	Refresh bool `json:"refresh"`
}

// LoadPlaylist fetches and parses a playlist, persists the channel list,
// and returns it. Without refresh, a previously cached list for the same
// URL is served from the settings store so app restarts do not hammer the
// provider.
func (h *Handlers) LoadPlaylist(w http.ResponseWriter, r *http.Request) {
	var req loadPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		writeJSONError(w, "url must be http or https", http.StatusBadRequest)
		return
	}

	if !req.Refresh {
		if channels, ok := h.cachedChannels(r.Context(), req.URL); ok {
			logging.Debug("Serving cached channel list for %s", req.URL)
			h.respondChannels(w, channels, true)
			return
		}
	}

	text, err := h.fetchText(r, req.URL)
	if err != nil {
		metrics.PlaylistFetchesTotal.WithLabelValues("error").Inc()
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}
	metrics.PlaylistFetchesTotal.WithLabelValues("success").Inc()

	channels := playlist.Load(text, req.URL)
	metrics.PlaylistChannels.Set(float64(len(channels)))
	logging.Info("Loaded playlist %s: %d channels", req.URL, len(channels))

	if err := h.store.SetJSON(r.Context(), settings.KeyPlaylistURL, req.URL); err != nil {
		logging.Warn("Failed to persist playlist url: %v", err)
	}
	if err := h.store.SetJSON(r.Context(), settings.KeyChannels, channels); err != nil {
		logging.Warn("Failed to persist channel list: %v", err)
	}

	if h.logos.IsEnabled() {
		go h.prefetchLogos(channels)
	}

	h.respondChannels(w, channels, false)
}

// GetChannels returns the cached channel list from the settings store.
func (h *Handlers) GetChannels(w http.ResponseWriter, r *http.Request) {
	var channels []playlist.Channel
	err := h.store.GetJSON(r.Context(), settings.KeyChannels, &channels)
	if errors.Is(err, settings.ErrNotFound) {
		writeJSONError(w, "no playlist loaded", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSONError(w, "failed to read channel list", http.StatusInternalServerError)
		return
	}
	h.respondChannels(w, channels, true)
}

// cachedChannels returns the stored channel list when it belongs to url.
func (h *Handlers) cachedChannels(ctx context.Context, rawURL string) ([]playlist.Channel, bool) {
	stored, err := h.store.GetString(ctx, settings.KeyPlaylistURL)
	if err != nil || stored != rawURL {
		return nil, false
	}
	var channels []playlist.Channel
	if err := h.store.GetJSON(ctx, settings.KeyChannels, &channels); err != nil || len(channels) == 0 {
		return nil, false
	}
	return channels, true
}

func (h *Handlers) respondChannels(w http.ResponseWriter, channels []playlist.Channel, cached bool) {
	if channels == nil {
		channels = []playlist.Channel{}
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"channels": channels,
		"count":    len(channels),
		"cached":   cached,
	})
}

// prefetchLogos warms the logo cache for a fresh channel list. Runs in the
// background with its own deadline; the load response never waits on it.
func (h *Handlers) prefetchLogos(channels []playlist.Channel) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	urls := make([]string, 0, len(channels))
	for _, ch := range channels {
		if ch.Logo != "" {
			urls = append(urls, ch.Logo)
		}
	}
	h.logos.Prefetch(ctx, urls)
}
