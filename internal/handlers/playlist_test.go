package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

const testM3U = `#EXTM3U
#EXTINF:-1 tvg-name="BBC One" group-title="News",BBC One HD
http://provider.example.com/live/bbc1.ts
#EXTINF:-1,News 24
http://provider.example.com/live/news24.ts
`

func newPlaylistServer(t *testing.T, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestLoadPlaylist(t *testing.T) {
	srv, hits := newPlaylistServer(t, testM3U)
	h := newTestHandlers(t)
	router := newTestRouter(h)

	rec := do(t, router, http.MethodPost, "/api/playlist/load", `{"url":"`+srv.URL+`/list.m3u"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	out := decodeEnvelope(t, rec.Body.Bytes())
	if out["count"] != float64(2) {
		t.Errorf("count = %v, want 2", out["count"])
	}
	if out["cached"] != false {
		t.Errorf("cached = %v, want false on first load", out["cached"])
	}
	if hits.Load() != 1 {
		t.Errorf("provider fetched %d times, want 1", hits.Load())
	}

	// Channel list and URL are persisted.
	rec = do(t, router, http.MethodGet, "/api/settings/playlistUrl", "")
	if !strings.Contains(rec.Body.String(), srv.URL) {
		t.Errorf("playlistUrl setting = %s, want provider url", rec.Body.String())
	}
	rec = do(t, router, http.MethodGet, "/api/settings/channels", "")
	if !strings.Contains(rec.Body.String(), "BBC One HD") {
		t.Errorf("channels setting = %s, want parsed channels", rec.Body.String())
	}
}

func TestLoadPlaylistUsesCache(t *testing.T) {
	srv, hits := newPlaylistServer(t, testM3U)
	h := newTestHandlers(t)
	router := newTestRouter(h)

	body := `{"url":"` + srv.URL + `/list.m3u"}`
	do(t, router, http.MethodPost, "/api/playlist/load", body)

	rec := do(t, router, http.MethodPost, "/api/playlist/load", body)
	out := decodeEnvelope(t, rec.Body.Bytes())
	if out["cached"] != true {
		t.Errorf("cached = %v, want true on repeat load", out["cached"])
	}
	if hits.Load() != 1 {
		t.Errorf("provider fetched %d times, want 1 (second load cached)", hits.Load())
	}

	// refresh forces a refetch.
	rec = do(t, router, http.MethodPost, "/api/playlist/load", `{"url":"`+srv.URL+`/list.m3u","refresh":true}`)
	out = decodeEnvelope(t, rec.Body.Bytes())
	if out["cached"] != false {
		t.Errorf("cached = %v, want false with refresh", out["cached"])
	}
	if hits.Load() != 2 {
		t.Errorf("provider fetched %d times, want 2 after refresh", hits.Load())
	}
}

func TestLoadPlaylistDirectStream(t *testing.T) {
	srv, _ := newPlaylistServer(t, "binary stream data, not a playlist")
	h := newTestHandlers(t)
	router := newTestRouter(h)

	rec := do(t, router, http.MethodPost, "/api/playlist/load", `{"url":"`+srv.URL+`/live/1.ts"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	out := decodeEnvelope(t, rec.Body.Bytes())
	if out["count"] != float64(1) {
		t.Errorf("count = %v, want 1 direct stream channel", out["count"])
	}
	if !strings.Contains(rec.Body.String(), "Direct Stream") {
		t.Errorf("body = %s, want Direct Stream channel", rec.Body.String())
	}
}

func TestLoadPlaylistErrors(t *testing.T) {
	h := newTestHandlers(t)
	router := newTestRouter(h)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing url", `{}`, http.StatusBadRequest},
		{"bad scheme", `{"url":"ftp://x/list.m3u"}`, http.StatusBadRequest},
		{"unreachable provider", `{"url":"http://127.0.0.1:1/list.m3u"}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/playlist/load", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGetChannels(t *testing.T) {
	srv, _ := newPlaylistServer(t, testM3U)
	h := newTestHandlers(t)
	router := newTestRouter(h)

	rec := do(t, router, http.MethodGet, "/api/playlist/channels", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status before load = %d, want %d", rec.Code, http.StatusNotFound)
	}

	do(t, router, http.MethodPost, "/api/playlist/load", `{"url":"`+srv.URL+`/list.m3u"}`)

	rec = do(t, router, http.MethodGet, "/api/playlist/channels", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status after load = %d, want %d", rec.Code, http.StatusOK)
	}
	out := decodeEnvelope(t, rec.Body.Bytes())
	if out["count"] != float64(2) {
		t.Errorf("count = %v, want 2", out["count"])
	}
}
