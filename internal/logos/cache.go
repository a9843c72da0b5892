package logos

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"iptv-relay/internal/logging"
	"iptv-relay/internal/metrics"
	"iptv-relay/internal/workers"
)

// Logos fit inside this square. Channel art in playlists varies from
// 32px favicons to full posters; normalizing keeps the cache small and
// the UI consistent.
const fitSize = 256

// maxDownloadBytes caps a single logo fetch. Anything larger is not a
// channel logo.
const maxDownloadBytes = 10 << 20

// maxPrefetchWorkers caps the prefetch pool regardless of CPU count.
const maxPrefetchWorkers = 16

// Cache downloads channel logos, normalizes them to PNG, and serves them
// from a directory on disk. Cached files are named by the MD5 of the
// source URL so repeated playlist loads reuse the same artwork.
type Cache struct {
	dir     string
	enabled bool
	client  *http.Client
	mu      sync.Mutex
}

// NewCache creates a logo cache rooted at dir. A nil client gets a
// default with a sane timeout.
func NewCache(dir string, enabled bool, client *http.Client) *Cache {
	if enabled {
		logging.Debug("Logo cache: enabled, cache dir: %s", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.Warn("Logo cache: failed to create cache dir: %v", err)
		}
	} else {
		logging.Debug("Logo cache: disabled")
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Cache{
		dir:     dir,
		enabled: enabled,
		client:  client,
	}
}

// IsEnabled reports whether the cache serves logos at all.
func (c *Cache) IsEnabled() bool {
	return c.enabled
}

// CacheKey returns the on-disk file name for a logo URL.
func CacheKey(logoURL string) string {
	hash := md5.Sum([]byte(logoURL))
	return fmt.Sprintf("%x.png", hash)
}

// Get returns the normalized PNG bytes for a logo URL, fetching and
// converting on a cache miss.
func (c *Cache) Get(ctx context.Context, logoURL string) ([]byte, error) {
	if !c.enabled {
		return nil, fmt.Errorf("logo cache disabled")
	}
	if u, err := url.Parse(logoURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("unsupported logo url: %s", logoURL)
	}

	cachePath := filepath.Join(c.dir, CacheKey(logoURL))

	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.LogoCacheHits.Inc()
		logging.Debug("Logo cache hit: %s", logoURL)
		return data, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.LogoCacheHits.Inc()
		return data, nil
	}
	metrics.LogoCacheMisses.Inc()

	data, err := c.fetchAndConvert(ctx, logoURL)
	if err != nil {
		metrics.LogoFetchErrors.Inc()
		return nil, err
	}

	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		logging.Warn("Failed to cache logo %s: %v", cachePath, err)
	} else {
		logging.Debug("Logo cached: %s", cachePath)
	}

	return data, nil
}

func (c *Cache) fetchAndConvert(ctx context.Context, logoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid logo url: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("logo fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}

	// Fit preserves aspect ratio and never upscales tiny favicons.
	thumb := imaging.Fit(img, fitSize, fitSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}
	return buf.Bytes(), nil
}

// Prefetch warms the cache for a channel list in the background. Failures
// are logged and skipped; a dead logo URL should not affect playback.
func (c *Cache) Prefetch(ctx context.Context, urls []string) {
	if !c.enabled || len(urls) == 0 {
		return
	}

	// Deduplicate; large playlists repeat artwork across channels.
	seen := make(map[string]bool, len(urls))
	unique := urls[:0:0]
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
	}

	numWorkers := workers.ForIO(maxPrefetchWorkers)
	logging.Debug("Prefetching %d logos with %d workers", len(unique), numWorkers)

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				if _, err := c.Get(ctx, u); err != nil {
					logging.Debug("Logo prefetch failed for %s: %v", u, err)
				}
			}
		}()
	}

	for _, u := range unique {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- u:
		}
	}
	close(jobs)
	wg.Wait()
}

// Handler serves cached logos over HTTP at /logos/{url-encoded source}.
// The source URL arrives as a query parameter to avoid path escaping
// headaches with nested URLs.
func (c *Cache) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logoURL := r.URL.Query().Get("url")
		if logoURL == "" {
			http.Error(w, "Missing url parameter", http.StatusBadRequest)
			return
		}

		data, err := c.Get(r.Context(), logoURL)
		if err != nil {
			http.Error(w, "Logo not available", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		if _, err := w.Write(data); err != nil {
			logging.Debug("Failed to write logo response: %v", err)
		}
	})
}
