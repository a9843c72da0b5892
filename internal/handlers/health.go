package handlers

import (
	"net/http"
	"runtime"
	"time"

	"iptv-relay/internal/session"
	"iptv-relay/internal/startup"
)

const (
	statusHealthy = "healthy"
	statusAlive   = "alive"
	statusReady   = "ready"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	Session *session.Info `json:"session,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Session:      h.sessions.Active(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// LivenessCheck is a minimal liveness probe.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, statusAlive)
}

// ReadinessCheck reports whether the relay can accept requests. The
// settings store is the only dependency that can be down after startup.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Keys(r.Context()); err != nil {
		writeJSONError(w, "settings store unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, statusReady)
}
