// Package request is the outbound HTTP layer. Requests are queued per
// provider (remote host) and worked by a small pool each, so a burst of
// tile fetches stays within the tile service's comfort zone while
// unrelated hosts proceed independently.
package request

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"postergo/pkg/cache"
	"postergo/pkg/config"
	"postergo/pkg/tracker"
	"postergo/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("postergo/%s (+https://github.com/postergo/postergo)", version.Version)

// Client handles HTTP requests with queuing, caching, and tracking.
type Client struct {
	httpClient *http.Client
	cache      cache.Cacher
	tracker    *tracker.Tracker
	backoff    *ProviderBackoff

	retries     int
	concurrency int

	// Queues per provider (host)
	queues map[string]chan job
	mu     sync.Mutex // Protects queues map
}

// job represents a queued request.
type job struct {
	req      *http.Request
	headers  map[string]string
	cacheKey string
	respChan chan jobResult
}

type jobResult struct {
	body []byte
	err  error
}

// New creates a new Client.
func New(c cache.Cacher, t *tracker.Tracker, cfg config.RequestConfig) *Client {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		httpClient:  &http.Client{Timeout: time.Duration(cfg.Timeout)},
		cache:       c,
		tracker:     t,
		backoff:     NewProviderBackoff(time.Duration(cfg.Backoff.BaseDelay), time.Duration(cfg.Backoff.MaxDelay)),
		retries:     retries,
		concurrency: concurrency,
		queues:      make(map[string]chan job),
	}
}

// Get performs a GET request with queuing and caching if key is provided.
func (c *Client) Get(ctx context.Context, u, cacheKey string) ([]byte, error) {
	return c.GetWithHeaders(ctx, u, nil, cacheKey)
}

// GetWithHeaders performs a GET request with custom headers and optional caching.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string, cacheKey string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	// 1. Check Cache (Only if key is provided)
	if cacheKey != "" {
		if val, hit := c.cache.GetCache(ctx, cacheKey); hit {
			c.tracker.TrackCacheHit(provider)
			slog.Debug("Cache Hit", "provider", provider, "key", cacheKey)
			return val, nil
		}
		c.tracker.TrackCacheMiss(provider)
		slog.Debug("Cache Miss", "provider", provider, "key", cacheKey)
	}

	// 2. Enqueue Request
	req, err := http.NewRequestWithContext(ctx, "GET", u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	respChan := make(chan jobResult, 1)
	j := job{req: req, headers: headers, cacheKey: cacheKey, respChan: respChan}

	c.dispatch(provider, j)

	// 3. Wait for Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-respChan:
		return res.body, res.err
	}
}

// normalizeProvider groups sharded hostnames into one provider so their
// requests share a queue and a backoff state. Tile services publish their
// shards as single-letter subdomains (a.tile..., b.tile...).
func normalizeProvider(host string) string {
	if host == "tile.openstreetmap.org" || strings.HasSuffix(host, ".tile.openstreetmap.org") {
		return "osm-tiles"
	}
	return host
}

// dispatch sends the job to the provider's queue, creating the queue and
// its workers if needed.
func (c *Client) dispatch(provider string, j job) {
	c.mu.Lock()
	q, ok := c.queues[provider]
	if !ok {
		q = make(chan job, 100)
		c.queues[provider] = q
		for range c.concurrency {
			go c.worker(provider, q)
		}
	}
	c.mu.Unlock()

	// We block here if the queue is full, effectively throttling the caller
	select {
	case q <- j:
	case <-j.req.Context().Done():
		// Caller gave up before we could even enqueue
		j.respChan <- jobResult{err: j.req.Context().Err()}
	}
}

// worker processes requests for a specific provider.
func (c *Client) worker(provider string, q <-chan job) {
	for j := range q {
		// Check context before processing
		if j.req.Context().Err() != nil {
			slog.Warn("Job dropped from queue (context expired)", "provider", provider, "error", j.req.Context().Err())
			j.respChan <- jobResult{err: j.req.Context().Err()}
			continue
		}

		// Apply User-Agent (Default if not provided)
		uaMatch := false
		for k, v := range j.headers {
			j.req.Header.Set(k, v)
			if http.CanonicalHeaderKey(k) == "User-Agent" {
				uaMatch = true
			}
		}
		if !uaMatch {
			j.req.Header.Set("User-Agent", defaultUserAgent)
		}

		c.backoff.Wait(provider)
		body, err := c.execute(j.req)

		if err == nil {
			c.tracker.TrackFetchSuccess(provider)
			c.backoff.RecordSuccess(provider)
			// Cache result (Only if key is provided)
			if j.cacheKey != "" {
				if err := c.cache.SetCache(context.Background(), j.cacheKey, body); err != nil {
					slog.Error("Failed to cache response", "url", j.req.URL, "error", err)
				}
			}
		} else {
			c.tracker.TrackFetchFailure(provider)
			c.backoff.RecordFailure(provider)
		}

		j.respChan <- jobResult{body: body, err: err}
	}
}

// execute attempts the request, retrying transient failures. The
// per-provider backoff handles pacing between attempts.
func (c *Client) execute(req *http.Request) ([]byte, error) {
	provider := normalizeProvider(req.URL.Host)

	for attempt := 0; attempt < c.retries; attempt++ {
		// Verify context is still alive before dialing
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}
		if attempt > 0 {
			c.backoff.Wait(provider)
		}

		slog.Debug("Network Request", "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Check if the error is a context cancellation from OUR side
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}
			slog.Warn("Request failed, retrying", "url", req.URL, "attempt", attempt+1, "error", err)
			c.backoff.RecordFailure(provider)
			continue
		}

		// Too Many Requests and server errors are retryable
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			slog.Warn("Retryable status", "status", resp.StatusCode, "url", req.URL, "attempt", attempt+1)
			c.backoff.RecordFailure(provider)
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
		}

		// Success
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded")
}
