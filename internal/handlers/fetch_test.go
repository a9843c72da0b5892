package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestFetchText(t *testing.T) {
	var gotUA string
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("#EXTM3U\n#EXTINF:-1,Ch\nhttp://x/1.ts\n"))
	}))
	defer remote.Close()

	h := newTestHandlers(t)
	router := newTestRouter(h)

	rec := do(t, router, http.MethodGet, "/api/fetch?url="+url.QueryEscape(remote.URL+"/list.m3u"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); body != "#EXTM3U\n#EXTINF:-1,Ch\nhttp://x/1.ts\n" {
		t.Errorf("body = %q, want remote content verbatim", body)
	}
	if gotUA != userAgent {
		t.Errorf("upstream User-Agent = %q, want %q", gotUA, userAgent)
	}
}

func TestFetchTextErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer failing.Close()

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing url", "/api/fetch", http.StatusBadRequest},
		{"bad scheme", "/api/fetch?url=" + url.QueryEscape("file:///etc/passwd"), http.StatusBadRequest},
		{"upstream error", "/api/fetch?url=" + url.QueryEscape(failing.URL), http.StatusBadGateway},
		{"unreachable host", "/api/fetch?url=" + url.QueryEscape("http://127.0.0.1:1/x"), http.StatusBadGateway},
	}

	h := newTestHandlers(t)
	router := newTestRouter(h)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target, "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
