/*
Package streaming implements the byte relay between a transcoder process and
an HTTP client.

# Overview

The relay's data path is process stdout -> HTTP response body. Two failure
modes matter for a live source: a client that disconnects (the normal
teardown trigger) and a client that stalls while staying connected. Copy
handles both without buffering more than one chunk.

# Backpressure

Copy never reads ahead of the client. Each chunk is written and flushed
before the next read from the source, so when the client's socket buffer
fills, Copy blocks in Write, which blocks the next Read, which lets the
operating system pipe between the relay and the transcoder process fill,
which finally pauses the process itself. Memory use is bounded by one chunk
regardless of how fast the process produces or how slowly the client drains.

# Cancellation

Client disconnects surface through the request context; Copy returns
ErrClientGone. A connected but unresponsive client is cut off after
WriteTimeout with ErrWriteTimeout. A read blocked on a silent source cannot
be interrupted from inside Copy; the owner of the source must terminate the
process (closing its stdout) to unblock the relay. See the transcoder
package's idle watchdog.

# Usage

	cfg := streaming.DefaultConfig()
	n, err := streaming.Copy(r.Context(), w, proc.Stdout(), cfg)
	if errors.Is(err, streaming.ErrClientGone) {
		// normal teardown
	}
*/
package streaming
