package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// State is the lifecycle position of a session.
type State int

const (
	// StateStarting means the session exists and its route is registered,
	// but no client has connected yet and no process is running.
	StateStarting State = iota
	// StateStreaming means a client is connected and the bound process is
	// emitting output.
	StateStreaming
	// StateStopped is terminal. A stopped session is never revived, only
	// replaced.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// idBytes gives 128 bits of entropy. The id is the only access control on
// the dynamic route, so it must not be guessable over the server's
// lifetime.
const idBytes = 16

// newSessionID returns a cryptographically random hex token.
func newSessionID() (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Session binds one source URL to one transcoding process and one
// externally reachable route, until superseded or stopped. The Manager
// exclusively owns the current Session; no other component mutates it.
type Session struct {
	ID        string
	SourceURL string
	CreatedAt time.Time

	mu      sync.Mutex
	state   State
	proc    Process
	claimed bool
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// claim marks the session as owned by its first inbound client connection.
// It returns false if another client already claimed it or the session is
// stopped.
func (s *Session) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed || s.state == StateStopped {
		return false
	}
	s.claimed = true
	return true
}

// attach records the spawned process and moves the session to Streaming.
// It fails if the session was stopped while the process was being spawned,
// in which case the caller must tear the process down.
func (s *Session) attach(proc Process) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return false
	}
	s.proc = proc
	s.state = StateStreaming
	return true
}

// stop transitions to Stopped and returns the process to terminate, if
// any. Idempotent: later calls return nil.
func (s *Session) stop() Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return nil
	}
	s.state = StateStopped
	proc := s.proc
	s.proc = nil
	return proc
}

// Info is a read-only snapshot of a session for status reporting.
type Info struct {
	ID        string    `json:"id"`
	SourceURL string    `json:"sourceUrl"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

// snapshot returns the session's current Info.
func (s *Session) snapshot() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:        s.ID,
		SourceURL: s.SourceURL,
		State:     s.state.String(),
		CreatedAt: s.CreatedAt,
	}
}
