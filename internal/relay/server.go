package relay

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"iptv-relay/internal/logging"
	"iptv-relay/internal/middleware"
)

// Config holds the relay server's listen address and static mounts.
type Config struct {
	// Host is the interface to bind. The relay is a local companion
	// process, so this should stay a loopback address.
	Host string
	// Port to listen on. Zero picks an ephemeral port.
	Port int
	// HLSDir is served under /hls/ when non-empty.
	HLSDir string
}

// Server is the local HTTP server the media player connects to. It owns
// the dynamic per-session stream routes and the static mounts; API routes
// are mounted by the caller through Router. The listener starts lazily on
// the first EnsureStarted so the process can run without binding a port
// until a stream is requested.
type Server struct {
	cfg    Config
	router *mux.Router

	streamsMu sync.RWMutex
	streams   map[string]http.Handler

	mu       sync.Mutex
	handler  http.Handler
	listener net.Listener
	srv      *http.Server
}

// New creates a relay server with the stream and static routes mounted.
func New(cfg Config) *Server {
	s := &Server{
		cfg:     cfg,
		streams: make(map[string]http.Handler),
	}

	r := mux.NewRouter()
	r.HandleFunc("/mp4/{id}", s.serveStream).Methods("GET")

	if cfg.HLSDir != "" {
		fs := http.StripPrefix("/hls/", noListing(http.FileServer(http.Dir(cfg.HLSDir))))
		r.PathPrefix("/hls/").Handler(middleware.NoCache(fs)).Methods("GET")
	}

	s.router = r
	s.handler = r
	return s
}

// Router returns the server's router so the caller can mount API and
// health routes alongside the stream routes.
func (s *Server) Router() *mux.Router {
	return s.router
}

// SetHandler installs the final handler chain, normally the router wrapped
// in middleware. Must be called before EnsureStarted.
func (s *Server) SetHandler(h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// EnsureStarted binds the listener and starts serving if not already
// running. Idempotent; concurrent callers all observe the same listener.
// A bind failure (typically the port being in use) is returned to the
// caller and the server stays stopped.
func (s *Server) EnsureStarted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind relay address %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:     s.handler,
		ReadTimeout: 15 * time.Second,
		// Streaming responses are open-ended; never time out writes.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	s.listener = ln
	s.srv = srv

	go func() {
		if err := srv.Serve(ln); err != http.ErrServerClosed {
			logging.Error("Relay server error: %v", err)
		}
	}()

	logging.Info("Relay server listening on %s", ln.Addr())
	return nil
}

// Started reports whether the listener is up.
func (s *Server) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

// Addr returns the address clients should connect to. Before the listener
// is up this is the configured address; after, the bound one (which
// matters when the configured port is zero).
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
}

// BaseURL returns the root URL of the relay server.
func (s *Server) BaseURL() string {
	return "http://" + s.Addr()
}

// StreamURL returns the playback URL for a session id.
func (s *Server) StreamURL(id string) string {
	return s.BaseURL() + "/mp4/" + id
}

// RegisterStream mounts a handler at /mp4/{id}.
func (s *Server) RegisterStream(id string, h http.Handler) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	s.streams[id] = h
}

// DeregisterStream removes a stream route. After it returns, requests for
// the id get a 404.
func (s *Server) DeregisterStream(id string) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	delete(s.streams, id)
}

// serveStream dispatches /mp4/{id} to the registered session handler.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.streamsMu.RLock()
	h, ok := s.streams[id]
	s.streamsMu.RUnlock()

	if !ok {
		http.Error(w, "Stream not found", http.StatusNotFound)
		return
	}
	h.ServeHTTP(w, r)
}

// Shutdown stops the listener gracefully. A server that never started is
// a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// noListing wraps a file server and refuses directory requests instead of
// rendering an index page.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, "/")
		if p == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
