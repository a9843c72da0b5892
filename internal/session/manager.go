package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"iptv-relay/internal/logging"
	"iptv-relay/internal/mediatypes"
	"iptv-relay/internal/metrics"
)

var (
	// ErrInvalidSource indicates a source URL that was rejected before any
	// session or process was created.
	ErrInvalidSource = errors.New("invalid source url")
)

// Registrar is the part of the relay server the manager drives: route
// registration for dynamic sessions and lazy startup of the listener.
type Registrar interface {
	// EnsureStarted makes the relay listen if it is not already. Idempotent.
	EnsureStarted() error
	// RegisterStream mounts a handler for a session id; DeregisterStream
	// removes it. After DeregisterStream returns, the route is no longer
	// externally reachable.
	RegisterStream(id string, h http.Handler)
	DeregisterStream(id string)
	// StreamURL returns the fully-qualified local URL for a session id.
	StreamURL(id string) string
}

// Process is the manager's view of a spawned transcoding process.
type Process interface {
	// Relay streams process output to the client until teardown.
	Relay(ctx context.Context, w http.ResponseWriter) error
	// Stop terminates the process. Idempotent.
	Stop()
	// Running reports whether the process has not yet exited.
	Running() bool
}

// Starter spawns a transcoding process bound to a source URL.
type Starter interface {
	Start(sourceURL string) (Process, error)
}

// StarterFunc adapts a function to the Starter interface.
type StarterFunc func(sourceURL string) (Process, error)

// Start implements Starter.
func (f StarterFunc) Start(sourceURL string) (Process, error) { return f(sourceURL) }

// Manager owns at most one active transcoding session at a time. Starting
// a new session fully stops any existing one before the new session's
// route becomes reachable.
type Manager struct {
	relay   Registrar
	starter Starter

	mu      sync.Mutex
	current *Session
}

// NewManager creates a session manager. Both collaborators are required.
func NewManager(relay Registrar, starter Starter) *Manager {
	return &Manager{
		relay:   relay,
		starter: starter,
	}
}

// Start creates a new session for sourceURL and returns the local URL the
// player should connect to. Any previously active session is fully stopped
// first: its process signaled and its route deregistered before the new
// route exists. The URL is returned before the transcoder has produced any
// bytes; the caller is expected to connect immediately.
func (m *Manager) Start(sourceURL string) (string, error) {
	if !mediatypes.IsPlayableURL(sourceURL) {
		return "", ErrInvalidSource
	}

	if err := m.relay.EnsureStarted(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.stopLocked(metrics.StopSuperseded)
		metrics.SessionsSupersededTotal.Inc()
	}

	id, err := newSessionID()
	if err != nil {
		return "", err
	}

	sess := &Session{
		ID:        id,
		SourceURL: sourceURL,
		CreatedAt: time.Now(),
		state:     StateStarting,
	}

	m.relay.RegisterStream(id, m.streamHandler(sess))
	m.current = sess

	metrics.SessionsStartedTotal.Inc()
	metrics.SessionsActive.Set(1)
	logging.Info("Session %s started for %s", id, sourceURL)

	return m.relay.StreamURL(id), nil
}

// Stop terminates the active session, if any. Safe to call when idle, to
// call repeatedly, and to race with the disconnect teardown path.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(metrics.StopExplicit)
}

// stopLocked tears down the current session: process signaled, route
// deregistered, state Stopped. The caller holds m.mu.
func (m *Manager) stopLocked(reason string) {
	sess := m.current
	if sess == nil {
		return
	}
	m.current = nil

	m.retire(sess, reason)
}

// retire moves a session to Stopped exactly once: terminates its process
// and removes its route. Idempotent across racing callers because
// Session.stop only yields the process to the first.
func (m *Manager) retire(sess *Session, reason string) {
	proc := sess.stop()
	if proc != nil && proc.Running() {
		proc.Stop()
	}
	m.relay.DeregisterStream(sess.ID)

	metrics.SessionsActive.Set(float64(m.activeCount()))
	metrics.SessionStopsTotal.WithLabelValues(reason).Inc()
	metrics.SessionDuration.Observe(time.Since(sess.CreatedAt).Seconds())
	logging.Info("Session %s stopped (%s)", sess.ID, reason)
}

func (m *Manager) activeCount() int {
	if m.current != nil {
		return 1
	}
	return 0
}

// Active returns a snapshot of the current session, or nil when idle.
func (m *Manager) Active() *Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	info := m.current.snapshot()
	return &info
}

// Shutdown stops any active session. Used on application exit.
func (m *Manager) Shutdown() {
	m.Stop()
}

// streamHandler serves the session's dynamic route. The process is bound
// to the session, not to each connection: only the first client claims the
// session and triggers the spawn; concurrent seconds are rejected with a
// conflict status. When the relay ends, for any reason, the session is
// retired so the route disappears and no process outlives the response.
func (m *Manager) streamHandler(sess *Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if !sess.claim() {
			http.Error(w, "Stream already has a consumer", http.StatusConflict)
			return
		}

		proc, err := m.starter.Start(sess.SourceURL)
		if err != nil {
			logging.Error("Failed to spawn transcoder for session %s: %v", sess.ID, err)
			m.finish(sess, metrics.StopProcessExit)
			http.Error(w, "Failed to start transcoder", http.StatusInternalServerError)
			return
		}

		if !sess.attach(proc) {
			// Stopped while spawning (explicit stop or supersede won the
			// race). The route is gone; do not leak the fresh process.
			proc.Stop()
			http.Error(w, "Session stopped", http.StatusConflict)
			return
		}

		logging.Debug("Session %s streaming to %s", sess.ID, r.RemoteAddr)

		err = proc.Relay(r.Context(), w)

		reason := metrics.StopProcessExit
		if r.Context().Err() != nil {
			reason = metrics.StopDisconnect
		}
		m.finish(sess, reason)
		_ = err // relay errors are logged at the transcoder layer
	})
}

// finish retires a session from the handler path, unless a Stop or a
// superseding Start already did.
func (m *Manager) finish(sess *Session, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == sess {
		m.current = nil
	} else if sess.State() == StateStopped {
		// Already retired by stopLocked.
		return
	}
	m.retire(sess, reason)
}
