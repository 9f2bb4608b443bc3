// Package cache provides the response cache used by the CrunchBase client.
//
// Every successful fetch is remembered under the exact request URL
// (query string and API key included) together with the validators the
// server sent:
//
// - ETag, stored without surrounding quotes, replayed as If-None-Match
// - Last-Modified, stored verbatim, replayed as If-Modified-Since
// - the canonical URL (API key removed) for display and debugging
//
// There is no eviction, no TTL and no size bound. An entry changes only
// when a newer 200 response for the same URL arrives; a 304 leaves it as is.
//
// # Basic Usage
//
//	store := cache.NewMemory()
//
//	// Remember a response
//	entry, err := cache.ResponseToEntry(resp, requestURL)
//	if err != nil {
//		return err
//	}
//	store.Set(requestURL, entry)
//
// # Conditional Requests
//
//	if entry, ok := store.Get(requestURL); ok && cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//		// Server answers 304 if the cached body is still current
//	}
//
// # Metrics
//
//   - crunchbase_cache_entries - Entries in the cache
//   - crunchbase_conditional_requests_total - Conditional requests sent
//   - crunchbase_304_responses_total - Revalidations answered with 304
//   - crunchbase_cache_errors_total{operation} - Snapshot errors
package cache
