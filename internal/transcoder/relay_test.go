package transcoder

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"iptv-relay/internal/streaming"
)

func TestRelayProcessOutput(t *testing.T) {
	trans := fakeTranscoder(t, `printf 'fragmented-mp4-bytes'`)

	proc, err := trans.Start("http://x/s.ts")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := proc.Relay(context.Background(), rec); err != nil {
		t.Fatalf("Relay() returned error: %v", err)
	}

	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Expected Content-Type video/mp4, got %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Expected Cache-Control no-store, got %q", got)
	}
	if got := rec.Header().Get("Connection"); got != "keep-alive" {
		t.Errorf("Expected Connection keep-alive, got %q", got)
	}
	if rec.Body.String() != "fragmented-mp4-bytes" {
		t.Errorf("Body mismatch: %q", rec.Body.String())
	}
	if proc.Running() {
		t.Error("Expected process stopped after Relay")
	}
}

func TestRelayClientDisconnect(t *testing.T) {
	// Emits data forever; only the disconnect can end the stream.
	trans := fakeTranscoder(t, `while true; do printf 'data'; sleep 0.05; done`)
	cfg := trans.config
	cfg.IdleTimeout = 10 * time.Second
	trans = New(cfg)

	proc, err := trans.Start("http://x/s.ts")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	rec := httptest.NewRecorder()
	start := time.Now()
	err = proc.Relay(ctx, rec)

	if !errors.Is(err, streaming.ErrClientGone) {
		t.Errorf("Expected ErrClientGone, got %v", err)
	}

	// Disconnect cleanup: the bound process must be gone within a bounded
	// grace period.
	deadline := time.Now().Add(2 * time.Second)
	for proc.Running() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if proc.Running() {
		t.Error("Process still running after client disconnect")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Relay took %v to observe disconnect", elapsed)
	}
}

func TestRelayIdleWatchdog(t *testing.T) {
	// Produces nothing; the idle watchdog must terminate it.
	trans := fakeTranscoder(t, `sleep 30`)
	cfg := trans.config
	cfg.IdleTimeout = 300 * time.Millisecond
	trans = New(cfg)

	proc, err := trans.Start("http://x/s.ts")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	rec := httptest.NewRecorder()
	start := time.Now()
	_ = proc.Relay(context.Background(), rec)

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Watchdog took %v to fire", elapsed)
	}
	if proc.Running() {
		t.Error("Expected process terminated by watchdog")
	}
}

func TestRelayEmptyOutput(t *testing.T) {
	trans := fakeTranscoder(t, `exit 1`)

	proc, err := trans.Start("http://x/s.ts")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	rec := httptest.NewRecorder()
	// A failed process yields an empty, ended response, not a hang.
	if err := proc.Relay(context.Background(), rec); err != nil {
		t.Errorf("Expected nil error for process exit, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %d bytes", rec.Body.Len())
	}
}

func TestRelayProgressCallback(t *testing.T) {
	trans := fakeTranscoder(t, `printf '0123456789'`)
	cfg := trans.config
	var total int64
	cfg.Stream.OnProgress = func(n int64) { total = n }
	trans = New(cfg)

	proc, err := trans.Start("http://x/s.ts")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := proc.Relay(context.Background(), rec); err != nil {
		t.Fatalf("Relay() failed: %v", err)
	}
	if total != 10 {
		t.Errorf("Expected progress total 10, got %d", total)
	}
	if !strings.Contains(rec.Body.String(), "0123456789") {
		t.Errorf("Body mismatch: %q", rec.Body.String())
	}
}
