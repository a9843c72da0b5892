package transcoder

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"iptv-relay/internal/logging"
	"iptv-relay/internal/metrics"
	"iptv-relay/internal/streaming"
)

// ErrBinaryNotFound indicates that the ffmpeg binary could not be located.
var ErrBinaryNotFound = errors.New("ffmpeg binary not found")

// stopGracePeriod is how long a terminated process gets to exit after
// SIGTERM before it is killed outright.
const stopGracePeriod = 2 * time.Second

// Config holds the fixed remux profile and process settings.
type Config struct {
	// FFmpegPath is the transcoder binary. Empty means resolve "ffmpeg"
	// through PATH at spawn time.
	FFmpegPath string
	// UserAgent is sent on upstream requests made by the process.
	UserAgent string
	// AudioCodec, AudioBitrate and AudioChannels define the audio
	// re-encode. Video is always copied without re-encoding.
	AudioCodec    string
	AudioBitrate  string
	AudioChannels int
	// ReconnectDelayMax caps the upstream reconnect backoff in seconds.
	ReconnectDelayMax int
	// IdleTimeout terminates the process when it produces no output for
	// this long (dead upstream that the reconnect policy cannot recover).
	IdleTimeout time.Duration
	// Stream configures the byte relay to the HTTP client.
	Stream streaming.Config
}

// DefaultConfig returns the remux profile used by the relay: video copied
// as-is, audio re-encoded to stereo AAC, fragmented MP4 on stdout.
func DefaultConfig() Config {
	return Config{
		UserAgent:         "Mozilla/5.0",
		AudioCodec:        "aac",
		AudioBitrate:      "128k",
		AudioChannels:     2,
		ReconnectDelayMax: 5,
		IdleTimeout:       60 * time.Second,
		Stream:            streaming.DefaultConfig(),
	}
}

// Transcoder spawns external transcoding processes.
type Transcoder struct {
	config Config
}

// New creates a Transcoder with the given configuration. Zero-valued
// profile fields fall back to the defaults.
func New(config Config) *Transcoder {
	defaults := DefaultConfig()
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.AudioCodec == "" {
		config.AudioCodec = defaults.AudioCodec
	}
	if config.AudioBitrate == "" {
		config.AudioBitrate = defaults.AudioBitrate
	}
	if config.AudioChannels == 0 {
		config.AudioChannels = defaults.AudioChannels
	}
	if config.ReconnectDelayMax == 0 {
		config.ReconnectDelayMax = defaults.ReconnectDelayMax
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}
	return &Transcoder{config: config}
}

// Check verifies that the configured binary can be located.
func (t *Transcoder) Check() error {
	_, err := t.binary()
	return err
}

func (t *Transcoder) binary() (string, error) {
	name := t.config.FFmpegPath
	if name == "" {
		name = "ffmpeg"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
	}
	return path, nil
}

// args builds the fixed argument template: read the source with
// reconnect-on-error, copy the video stream, re-encode audio, and emit a
// fragmented MP4 on stdout so output is playable as it arrives.
func (t *Transcoder) args(sourceURL string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-user_agent", t.config.UserAgent,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_on_http_error", "4xx,5xx",
		"-reconnect_delay_max", strconv.Itoa(t.config.ReconnectDelayMax),
		"-fflags", "+genpts+discardcorrupt",
		"-probesize", "50M",
		"-analyzeduration", "50M",
		"-i", sourceURL,
		"-c:v", "copy",
		"-c:a", t.config.AudioCodec,
		"-b:a", t.config.AudioBitrate,
		"-ac", strconv.Itoa(t.config.AudioChannels),
		"-f", "mp4",
		"-movflags", "frag_keyframe+empty_moov+default_base_moof",
		"pipe:1",
	}
}

// Start spawns one transcoding process bound to sourceURL. The caller owns
// the returned Process and must guarantee Stop is reached on every path.
func (t *Transcoder) Start(sourceURL string) (*Process, error) {
	bin, err := t.binary()
	if err != nil {
		metrics.ProcessSpawnsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	cmd := exec.Command(bin, t.args(sourceURL)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		metrics.ProcessSpawnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr := newTailBuffer(8 * 1024)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		metrics.ProcessSpawnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to start %s: %w", bin, err)
	}

	metrics.ProcessSpawnsTotal.WithLabelValues("success").Inc()
	logging.Debug("Spawned transcoder pid=%d for %s", cmd.Process.Pid, sourceURL)

	p := &Process{
		cmd:     cmd,
		stdout:  stdout,
		stderr:  stderr,
		config:  t.config,
		started: time.Now(),
		done:    make(chan struct{}),
	}

	go p.reap()

	return p, nil
}

// Process wraps one running external transcoding process.
type Process struct {
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  *tailBuffer
	config  Config
	started time.Time

	done    chan struct{} // closed once the process has been reaped
	waitErr error
	stopped atomic.Bool // a termination signal has been sent

	stopOnce sync.Once
}

// reap waits for process exit and records the result.
func (p *Process) reap() {
	p.waitErr = p.cmd.Wait()
	close(p.done)

	switch {
	case p.waitErr == nil:
		metrics.ProcessExitsTotal.WithLabelValues("clean").Inc()
	case p.stopped.Load():
		metrics.ProcessExitsTotal.WithLabelValues("killed").Inc()
	default:
		metrics.ProcessExitsTotal.WithLabelValues("error").Inc()
		logging.Debug("Transcoder pid=%d exited: %v; stderr: %s",
			p.cmd.Process.Pid, p.waitErr, p.stderr.String())
	}
}

// Pid returns the OS process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Running reports whether the process has not yet exited.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the process has exited and returns its exit error.
func (p *Process) Wait() error {
	<-p.done
	return p.waitErr
}

// Stderr returns the tail of the process's standard error output.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

// Stop terminates the process: SIGTERM first, SIGKILL if it has not exited
// within the grace period. Safe to call multiple times and from concurrent
// goroutines; calls after exit are no-ops.
func (p *Process) Stop() {
	p.stopOnce.Do(func() {
		if !p.Running() {
			return
		}
		p.stopped.Store(true)

		if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			logging.Debug("SIGTERM pid=%d: %v", p.cmd.Process.Pid, err)
		}

		go func() {
			timer := time.NewTimer(stopGracePeriod)
			defer timer.Stop()
			select {
			case <-p.done:
			case <-timer.C:
				logging.Warn("Transcoder pid=%d ignored SIGTERM, killing", p.cmd.Process.Pid)
				if err := p.cmd.Process.Kill(); err != nil {
					logging.Debug("kill pid=%d: %v", p.cmd.Process.Pid, err)
				}
			}
		}()
	})
}
