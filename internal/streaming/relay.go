package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a write operation exceeded the configured
	// timeout. This typically occurs when a client is receiving data too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the client disconnected before the stream
	// completed. This is detected via the request context being canceled.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates that the stream was canceled
	// programmatically rather than by the client.
	ErrStreamCanceled = errors.New("stream canceled")
)

// Config controls the behavior of Copy.
type Config struct {
	// WriteTimeout is the maximum time to wait for a single write to the
	// client before the stream is declared stalled.
	WriteTimeout time.Duration
	// ChunkSize bounds the number of bytes read from the source per
	// iteration. Each chunk is flushed to the client before the next read,
	// so the source is never read ahead of what the client has accepted.
	ChunkSize int
	// OnProgress, if set, is called after each successful write with the
	// total bytes relayed so far.
	OnProgress func(total int64)
}

// DefaultConfig returns sensible defaults for a live stream relay.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// Copy relays bytes from src to w as they arrive.
//
// Backpressure works through blocking: the next chunk is not read from src
// until the previous one has been written and flushed to the client, so a
// slow client slows the reads instead of growing a buffer. A client that
// stops accepting bytes entirely is cut off after WriteTimeout.
//
// Copy returns the number of bytes relayed and nil when src reaches EOF,
// ErrClientGone when ctx is canceled by a disconnect, ErrWriteTimeout when
// the client stalls, or the underlying read/write error otherwise.
//
// A blocked read on src is not interruptible from here; the owner of src
// (the transcoder process) must close its end when the stream is torn down
// so Copy can observe EOF.
func Copy(ctx context.Context, w http.ResponseWriter, src io.Reader, cfg Config) (int64, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, cfg.ChunkSize)

	var total int64
	for {
		select {
		case <-ctx.Done():
			return total, contextError(ctx)
		default:
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			written, writeErr := writeWithTimeout(ctx, w, buf[:n], cfg.WriteTimeout)
			total += int64(written)
			if writeErr != nil {
				return total, writeErr
			}
			if flusher != nil {
				flusher.Flush()
			}
			if cfg.OnProgress != nil {
				cfg.OnProgress(total)
			}
		}
		if readErr != nil {
			// Teardown closes the source out from under a blocked read; when
			// that teardown was triggered by the client going away, report
			// the disconnect rather than the induced read error.
			if ctx.Err() != nil {
				return total, contextError(ctx)
			}
			if readErr == io.EOF {
				return total, nil
			}
			return total, readErr
		}
	}
}

// writeWithTimeout performs a single write, bounding how long a stalled
// client can block the relay. The write itself runs in a goroutine because
// net/http response writes have no deadline of their own.
func writeWithTimeout(ctx context.Context, w io.Writer, p []byte, timeout time.Duration) (int, error) {
	type writeResult struct {
		n   int
		err error
	}
	resultCh := make(chan writeResult, 1)

	go func() {
		n, err := w.Write(p)
		resultCh <- writeResult{n, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		return result.n, result.err
	case <-timer.C:
		return 0, ErrWriteTimeout
	case <-ctx.Done():
		return 0, contextError(ctx)
	}
}

func contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ErrClientGone
	}
	return ErrStreamCanceled
}
