// Package client provides the caching HTTP client used to talk to the
// CrunchBase API. Every GET is revalidated against the in-memory cache with
// If-None-Match / If-Modified-Since, and 304 responses are answered from it.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/crunchbase-client/pkg/cache"
	"github.com/Sternrassler/crunchbase-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for CrunchBase client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crunchbase_requests_total",
		Help: "Total CrunchBase requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crunchbase_request_duration_seconds",
		Help:    "CrunchBase request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crunchbase_errors_total",
		Help: "Total CrunchBase errors by class",
	}, []string{"class"})
)

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "crunchbase-client/1.0"

// Client is the caching CrunchBase HTTP client.
// It is safe for concurrent use; fetches from one Client are serialized.
type Client struct {
	// mu guards the revalidate-then-store sequence in Fetch
	mu         sync.Mutex
	httpClient *http.Client
	cache      cache.Store
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client

	// Cache is the store owned by this client. A fresh cache.Memory is
	// created when nil; stores are never shared implicitly.
	Cache cache.Store

	// UserAgent header
	UserAgent string

	// Timeout per request, 0 disables it
	Timeout time.Duration

	// Logger overrides the component logger
	Logger *zerolog.Logger

	// Validate rejects 2xx bodies before they are cached. The returned
	// error is wrapped in a protocol APIError.
	Validate func(body []byte) error
}

// DefaultConfig returns a default configuration with its own empty cache.
func DefaultConfig() Config {
	return Config{
		Cache:     cache.NewMemory(),
		UserAgent: DefaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new caching client.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemory()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	logger := logging.NewLogger(logging.ComponentClient)
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		httpClient: httpClient,
		cache:      cfg.Cache,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Fetch performs a conditional GET for rawURL and returns the response body.
//
// A cached entry for the exact URL adds If-None-Match and If-Modified-Since.
// A 304 answer returns the cached body and leaves the entry untouched; a 2xx
// answer that passes Config.Validate replaces the entry. Any other outcome
// returns an *APIError and does not touch the cache.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	canonical := cache.CanonicalURL(rawURL)

	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", redactURLError(err, canonical))
	}

	// Step 1: Conditional headers from the cache
	cachedEntry, cached := c.cache.Get(rawURL)
	if cached && cache.ShouldMakeConditionalRequest(cachedEntry) {
		cache.AddConditionalHeaders(req, cachedEntry)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("url", canonical).
			Str("etag", cachedEntry.ETag).
			Str("last_modified", cachedEntry.LastModified).
			Msg("Making conditional request")
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	// Step 2: Execute
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = redactURLError(err, canonical)
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().Err(err).Str("url", canonical).Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			URL:        canonical,
			Err:        err,
		}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	// Step 3: 304 Not Modified
	if resp.StatusCode == http.StatusNotModified && cached {
		cache.NotModifiedResponses.Inc()
		c.logger.Info().Str("url", canonical).Msg("304 Not Modified - using cache")
		return bytes.Clone(cachedEntry.Data), nil
	}

	// Step 4: Failures leave the cache alone
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		_, _ = io.Copy(io.Discard, resp.Body)

		c.logger.Warn().
			Str("url", canonical).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("CrunchBase request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
			URL:        canonical,
		}
	}

	// Step 5: Store the fresh response
	entry, err := cache.ResponseToEntry(resp, rawURL)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		c.logger.Error().Err(err).Str("url", canonical).Msg("Failed to read response")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response",
			URL:        canonical,
			Err:        err,
		}
	}

	if c.config.Validate != nil {
		if err := c.config.Validate(entry.Data); err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassProtocol)).Inc()
			c.logger.Warn().Err(err).Str("url", canonical).Msg("Rejected response body")
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassProtocol,
				Message:    "invalid response body",
				URL:        canonical,
				Err:        err,
			}
		}
	}

	c.cache.Set(rawURL, entry)
	c.logger.Debug().
		Str("url", canonical).
		Str("etag", entry.ETag).
		Int("bytes", len(entry.Data)).
		Msg("Cached response")

	return entry.Data, nil
}

// redactURLError replaces the request URL inside a *url.Error with its
// canonical form so the API key never reaches logs or callers.
func redactURLError(err error, canonical string) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{Op: urlErr.Op, URL: canonical, Err: urlErr.Err}
}

// CacheEntry returns a copy of the cache entry stored for rawURL.
func (c *Client) CacheEntry(rawURL string) (*cache.CacheEntry, bool) {
	return c.cache.Get(rawURL)
}

// CacheSnapshot returns a copy of the whole cache keyed by request URL.
func (c *Client) CacheSnapshot() map[string]*cache.CacheEntry {
	return c.cache.Entries()
}

// Cache returns the store owned by this client.
func (c *Client) Cache() cache.Store {
	return c.cache
}
