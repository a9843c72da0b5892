package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxFetchBytes caps a proxied text fetch. Provider playlists run to a
// few megabytes; anything past this is not a playlist.
const maxFetchBytes = 50 << 20

// FetchText proxies a GET for remote text content (playlists, mostly) and
// returns the body verbatim. The browser side of the player cannot fetch
// provider URLs itself without tripping CORS, so the relay does it.
func (h *Handlers) FetchText(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeJSONError(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	if u, err := url.Parse(target); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		writeJSONError(w, "url must be http or https", http.StatusBadRequest)
		return
	}

	text, err := h.fetchText(r, target)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, text); err != nil {
		return
	}
}

// fetchText downloads target and returns its body as a string.
func (h *Handlers) fetchText(r *http.Request, target string) (string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("remote returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}
