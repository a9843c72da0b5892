package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"iptv-relay/internal/logging"
	"iptv-relay/internal/metrics"
)

// Default timeout for store operations
const defaultTimeout = 5 * time.Second

// Well-known setting keys.
const (
	// KeyPlaylistURL is the last playlist URL the user loaded.
	KeyPlaylistURL = "playlistUrl"
	// KeyChannels is the cached channel list parsed from that playlist.
	KeyChannels = "channels"
)

// ErrNotFound indicates the requested key has never been set.
var ErrNotFound = errors.New("setting not found")

// Store is a persistent key/value store for application settings backed by
// SQLite. Values are stored as JSON so callers can persist structured data
// (like a parsed channel list) alongside plain strings.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// New opens (creating if necessary) the settings database at path.
// The parent directory must already exist and be writable; use
// startup.LoadConfig() for directory validation before calling this.
func New(ctx context.Context, path string) (*Store, error) {
	logging.Info("Settings database path: %s", path)

	// WAL mode keeps readers unblocked during writes; busy_timeout helps
	// prevent "database is locked" errors.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close settings database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to settings database: %w", err)
	}

	// The store sees a handful of tiny queries; keep the pool small.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close settings database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize settings schema: %w", err)
	}

	logging.Info("Settings store initialized at %s", path)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(execCtx, schema)
	return err
}

// Get returns the raw JSON value stored under key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(queryCtx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		recordQuery("get", start, nil)
		return nil, ErrNotFound
	}
	recordQuery("get", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return json.RawMessage(value), nil
}

// GetJSON reads the value under key and unmarshals it into dest.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode setting %q: %w", key, err)
	}
	return nil
}

// GetString reads a string value under key.
func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	var v string
	if err := s.GetJSON(ctx, key, &v); err != nil {
		return "", err
	}
	return v, nil
}

// Set stores a raw JSON value under key, replacing any previous value. The
// value must be valid JSON; callers with Go values should use SetJSON.
func (s *Store) Set(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("setting %q: value is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(execCtx, query, key, string(value), time.Now().Unix())
	recordQuery("set", start, err)
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

// SetJSON marshals value and stores it under key.
func (s *Store) SetJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(execCtx, "DELETE FROM settings WHERE key = ?", key)
	recordQuery("delete", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, err)
	}
	return nil
}

// Keys returns all stored setting keys, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx, "SELECT key FROM settings ORDER BY key")
	recordQuery("keys", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan setting key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// recordQuery records settings store query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SettingsQueriesTotal.WithLabelValues(operation, status).Inc()
	metrics.SettingsQueryDuration.WithLabelValues(operation).Observe(duration)
}
