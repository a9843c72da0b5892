package transcoder

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"iptv-relay/internal/logging"
	"iptv-relay/internal/mediatypes"
	"iptv-relay/internal/metrics"
	"iptv-relay/internal/streaming"
)

// Relay streams the process's output to the HTTP client until the process
// exits, the client disconnects, or the stream stalls past the idle
// timeout. The process is terminated on every exit path; after Relay
// returns, no process is left running.
//
// The return value follows the byte relay's contract: nil when the process
// closed its output (exit, any code), streaming.ErrClientGone on a client
// disconnect, streaming.ErrWriteTimeout on a stalled client.
func (p *Process) Relay(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", mediatypes.RelayContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")

	// lastActivity is advanced by the progress callback; the watchdog
	// compares against it to detect a silent process.
	var lastActivity atomic.Int64
	lastActivity.Store(time.Now().UnixNano())

	streamCfg := p.config.Stream
	userProgress := streamCfg.OnProgress
	streamCfg.OnProgress = func(total int64) {
		lastActivity.Store(time.Now().UnixNano())
		if userProgress != nil {
			userProgress(total)
		}
	}

	// The watchdog is the only way out of a read blocked on a silent
	// process: it terminates the process, which closes stdout and unblocks
	// the relay loop. It also turns a client disconnect into process
	// termination for the same reason.
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go p.watchdog(ctx, &lastActivity, watchdogDone)

	n, err := streaming.Copy(ctx, w, p.stdout, streamCfg)

	p.Stop()
	waitErr := p.Wait()

	metrics.StreamBytesRelayedTotal.Add(float64(n))

	switch {
	case errors.Is(err, streaming.ErrClientGone):
		metrics.StreamClientDisconnects.Inc()
		logging.Debug("Client disconnected after %d bytes (pid=%d)", n, p.Pid())
	case errors.Is(err, streaming.ErrWriteTimeout):
		logging.Warn("Client stalled, stream terminated after %d bytes (pid=%d)", n, p.Pid())
	case err != nil:
		logging.Debug("Stream relay ended: %v (pid=%d)", err, p.Pid())
	case waitErr != nil && !p.stopped.Load():
		// Upstream unreachable or any other process failure: the response
		// simply ends. The exit code is not classified further.
		logging.Warn("Transcoder exited with error after %d bytes: %v", n, waitErr)
	default:
		logging.Debug("Stream completed: %d bytes in %v (pid=%d)", n, time.Since(p.started), p.Pid())
	}

	return err
}

// watchdog terminates the process when the client goes away or the process
// stops producing output for longer than the idle timeout.
func (p *Process) watchdog(ctx context.Context, lastActivity *atomic.Int64, done <-chan struct{}) {
	interval := p.config.IdleTimeout / 4
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Stop()
			return
		case <-p.done:
			return
		case <-done:
			return
		case <-ticker.C:
			idle := time.Since(time.Unix(0, lastActivity.Load()))
			if idle > p.config.IdleTimeout {
				logging.Warn("Transcoder pid=%d produced no output for %v, terminating", p.Pid(), idle.Round(time.Second))
				p.Stop()
				return
			}
		}
	}
}
