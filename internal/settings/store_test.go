package settings

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.db")
	s, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSetGetString(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetJSON(ctx, KeyPlaylistURL, "http://provider.example.com/list.m3u"); err != nil {
		t.Fatalf("SetJSON() error: %v", err)
	}

	got, err := s.GetString(ctx, KeyPlaylistURL)
	if err != nil {
		t.Fatalf("GetString() error: %v", err)
	}
	if got != "http://provider.example.com/list.m3u" {
		t.Errorf("GetString() = %q, want stored url", got)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetJSON(ctx, "volume", 0.5); err != nil {
		t.Fatalf("SetJSON() error: %v", err)
	}
	if err := s.SetJSON(ctx, "volume", 0.8); err != nil {
		t.Fatalf("SetJSON() overwrite error: %v", err)
	}

	var v float64
	if err := s.GetJSON(ctx, "volume", &v); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if v != 0.8 {
		t.Errorf("value = %v, want 0.8", v)
	}
}

func TestStructuredValueRoundTrip(t *testing.T) {
	type channel struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	s := newTestStore(t)
	ctx := context.Background()

	in := []channel{
		{Name: "BBC One HD", URL: "http://x/1.ts"},
		{Name: "News 24", URL: "http://x/2.ts"},
	}
	if err := s.SetJSON(ctx, KeyChannels, in); err != nil {
		t.Fatalf("SetJSON() error: %v", err)
	}

	var out []channel
	if err := s.GetJSON(ctx, KeyChannels, &out); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if len(out) != 2 || out[0].Name != "BBC One HD" || out[1].URL != "http://x/2.ts" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestSetRejectsInvalidJSON(t *testing.T) {
	s := newTestStore(t)

	err := s.Set(context.Background(), "bad", json.RawMessage(`{not json`))
	if err == nil {
		t.Error("Set() with invalid JSON succeeded, want error")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetJSON(ctx, "k", "v"); err != nil {
		t.Fatalf("SetJSON() error: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again is not an error.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete() error: %v", err)
	}
}

func TestKeysSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"zeta", "alpha", "mid"} {
		if err := s.SetJSON(ctx, k, true); err != nil {
			t.Fatalf("SetJSON(%q) error: %v", k, err)
		}
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	ctx := context.Background()

	s, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := s.SetJSON(ctx, KeyPlaylistURL, "http://x/list.m3u"); err != nil {
		t.Fatalf("SetJSON() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	s2, err := New(ctx, path)
	if err != nil {
		t.Fatalf("reopen New() error: %v", err)
	}
	defer s2.Close()

	got, err := s2.GetString(ctx, KeyPlaylistURL)
	if err != nil {
		t.Fatalf("GetString() after reopen error: %v", err)
	}
	if got != "http://x/list.m3u" {
		t.Errorf("GetString() = %q, want persisted url", got)
	}
}
