package cache

import (
	"bytes"
	"time"
)

// CacheEntry represents a cached CrunchBase response.
type CacheEntry struct {
	// Data is the raw response body
	Data []byte `json:"data"`

	// ETag for conditional requests (If-None-Match), stored without quotes
	ETag string `json:"etag,omitempty"`

	// LastModified is the raw Last-Modified header value (If-Modified-Since)
	LastModified string `json:"last_modified,omitempty"`

	// URL is the request URL with the API key removed. Display only, never a key.
	URL string `json:"url"`

	// StatusCode is the HTTP status code of the cached response
	StatusCode int `json:"status_code"`

	// CachedAt is when we cached this response
	CachedAt time.Time `json:"cached_at"`
}

// HasValidators returns true if the entry carries an ETag or a Last-Modified value.
func (e *CacheEntry) HasValidators() bool {
	return e.ETag != "" || e.LastModified != ""
}

// Clone returns a deep copy of the entry.
func (e *CacheEntry) Clone() *CacheEntry {
	if e == nil {
		return nil
	}
	c := *e
	c.Data = bytes.Clone(e.Data)
	return &c
}
