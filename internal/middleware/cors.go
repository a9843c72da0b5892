package middleware

import "net/http"

// CORS applies the permissive cross-origin policy the embedded player needs.
// The relay is loopback-only, so the open origin is bounded by the local
// machine; the player page is served from a different origin and must be
// able to issue GET and Range requests against the relay.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Range")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NoCache sets the cache-defeating headers used on the static segment
// routes. Segment files may be rewritten in place, so intermediaries and
// the player must never reuse a stale copy.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		h.Set("Surrogate-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
