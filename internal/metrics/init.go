package metrics

// Stop reasons recorded on iptv_relay_session_stops_total.
const (
	StopExplicit    = "explicit"
	StopSuperseded  = "superseded"
	StopDisconnect  = "disconnect"
	StopProcessExit = "process_exit"
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, reason := range []string{StopExplicit, StopSuperseded, StopDisconnect, StopProcessExit} {
		SessionStopsTotal.WithLabelValues(reason)
	}

	for _, status := range []string{"success", "error"} {
		ProcessSpawnsTotal.WithLabelValues(status)
		PlaylistFetchesTotal.WithLabelValues(status)
	}

	for _, result := range []string{"clean", "error", "killed"} {
		ProcessExitsTotal.WithLabelValues(result)
	}

	settingsOps := []string{"get", "set", "delete"}
	for _, op := range settingsOps {
		SettingsQueryDuration.WithLabelValues(op)
		for _, status := range []string{"success", "error", "not_found"} {
			SettingsQueriesTotal.WithLabelValues(op, status)
		}
	}
}
