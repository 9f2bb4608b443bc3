package cache

import (
	"sort"
	"time"
)

// Summary is the printable view of a cache entry: validators and size,
// no body. URL is the canonical URL and never carries the API key.
type Summary struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	StatusCode   int       `json:"status_code"`
	Size         int       `json:"size"`
	CachedAt     time.Time `json:"cached_at"`
}

// Summarize returns one Summary per entry, sorted by URL.
func Summarize(entries map[string]*CacheEntry) []Summary {
	out := make([]Summary, 0, len(entries))
	for requestURL, e := range entries {
		if e == nil {
			continue
		}
		url := e.URL
		if url == "" {
			url = CanonicalURL(requestURL)
		}
		out = append(out, Summary{
			URL:          url,
			ETag:         e.ETag,
			LastModified: e.LastModified,
			StatusCode:   e.StatusCode,
			Size:         len(e.Data),
			CachedAt:     e.CachedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}
