package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ResponseToEntry converts an HTTP response to a CacheEntry.
// It reads the response body and records the validators sent by the server.
// requestURL is the URL the response was fetched from.
// The response body is restored after reading.
func ResponseToEntry(resp *http.Response, requestURL string) (*CacheEntry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	// Read body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()

	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := &CacheEntry{
		Data:         body,
		ETag:         StripETagQuotes(resp.Header.Get("ETag")),
		LastModified: resp.Header.Get("Last-Modified"),
		URL:          CanonicalURL(requestURL),
		StatusCode:   resp.StatusCode,
		CachedAt:     time.Now(),
	}

	return entry, nil
}

// StripETagQuotes removes every double quote from an ETag header value.
func StripETagQuotes(etag string) string {
	return strings.ReplaceAll(etag, `"`, "")
}

// ShouldMakeConditionalRequest determines if we should add conditional
// request headers (If-None-Match or If-Modified-Since) based on the cache entry.
func ShouldMakeConditionalRequest(entry *CacheEntry) bool {
	if entry == nil {
		return false
	}
	return entry.HasValidators()
}

// AddConditionalHeaders adds If-None-Match (ETag) and If-Modified-Since
// headers to the request. Both are sent when both validators are known.
func AddConditionalHeaders(req *http.Request, entry *CacheEntry) {
	if entry == nil || req == nil {
		return
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}

	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	}
	if entry.LastModified != "" {
		req.Header.Set("If-Modified-Since", entry.LastModified)
	}
}
