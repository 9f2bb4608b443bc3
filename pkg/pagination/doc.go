// Package pagination walks paged CrunchBase endpoints one page at a time.
//
// The search endpoint reports the total number of hits and serves a fixed
// number of results per page. The walker fetches page 1 to learn the page
// count, then requests the remaining pages in order, stopping at the
// configured page limit.
//
// Example usage:
//
//	walker := pagination.NewWalker(fetcher, pagination.DefaultConfig())
//	pages, err := walker.FetchAllPages(ctx)
//
// Pages are fetched sequentially on the caller's goroutine. A failed page
// ends the walk and the pages fetched so far are returned with the error.
package pagination
