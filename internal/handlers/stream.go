package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"iptv-relay/internal/logging"
	"iptv-relay/internal/mediatypes"
	"iptv-relay/internal/session"
)

// proxyRequest is the body of POST /api/stream/proxy.
type proxyRequest struct {
	URL string `json:"url"`
}

// ProxyStream starts relaying a stream URL and returns the local playback
// URL. HLS manifests are passed through untouched: the player consumes
// them natively and remuxing a manifest makes no sense. Any previously
// running session is superseded. The response always carries the ok/error
// envelope; callers branch on "ok", not on transport failures.
func (h *Handlers) ProxyStream(w http.ResponseWriter, r *http.Request) {
	var req proxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResult(w, http.StatusBadRequest, map[string]interface{}{
			"ok": false, "error": "invalid request body",
		})
		return
	}
	req.URL = strings.TrimSpace(req.URL)

	if mediatypes.IsManifest(req.URL) {
		writeResult(w, http.StatusOK, map[string]interface{}{
			"ok": true, "url": req.URL,
		})
		return
	}

	localURL, err := h.sessions.Start(req.URL)
	if err != nil {
		logging.Warn("Proxy request for %q failed: %v", req.URL, err)
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrInvalidSource) {
			status = http.StatusBadRequest
		}
		writeResult(w, status, map[string]interface{}{
			"ok": false, "error": err.Error(),
		})
		return
	}

	writeResult(w, http.StatusOK, map[string]interface{}{
		"ok": true, "url": localURL,
	})
}

// StopProxy stops the active session. Stopping an idle relay succeeds;
// the caller only cares that nothing is running afterwards.
func (h *Handlers) StopProxy(w http.ResponseWriter, _ *http.Request) {
	h.sessions.Stop()
	writeResult(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// StreamStatus reports the active session, if any.
func (h *Handlers) StreamStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	info := h.sessions.Active()
	writeJSON(w, map[string]interface{}{
		"active":  info != nil,
		"session": info,
	})
}
