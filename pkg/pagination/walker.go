package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/crunchbase-client/pkg/logging"
	"github.com/rs/zerolog"
)

// Config holds walker configuration
type Config struct {
	// MaxPages caps the number of pages fetched, 0 means no cap
	MaxPages int
}

// DefaultConfig returns the default walker configuration
func DefaultConfig() Config {
	return Config{
		MaxPages: 10,
	}
}

// PageFetcher fetches a single page and reports the total page count
type PageFetcher interface {
	FetchPage(ctx context.Context, pageNum int) (data []byte, totalPages int, err error)
}

// PageFetcherFunc adapts a function to PageFetcher
type PageFetcherFunc func(ctx context.Context, pageNum int) ([]byte, int, error)

// FetchPage calls f
func (f PageFetcherFunc) FetchPage(ctx context.Context, pageNum int) ([]byte, int, error) {
	return f(ctx, pageNum)
}

// Walker fetches all pages of an endpoint in order
type Walker struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewWalker creates a new walker
func NewWalker(fetcher PageFetcher, config Config) *Walker {
	if config.MaxPages < 0 {
		config.MaxPages = 0
	}

	return &Walker{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger(logging.ComponentPagination),
	}
}

// FetchAllPages returns the raw page bodies in page order, starting at page 1
func (w *Walker) FetchAllPages(ctx context.Context) ([][]byte, error) {
	start := time.Now()

	firstPage, totalPages, err := w.fetcher.FetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}

	last := totalPages
	if last < 1 {
		last = 1
	}
	if w.config.MaxPages > 0 && last > w.config.MaxPages {
		last = w.config.MaxPages
	}

	pages := make([][]byte, 0, last)
	pages = append(pages, firstPage)

	for page := 2; page <= last; page++ {
		if err := ctx.Err(); err != nil {
			return pages, fmt.Errorf("walk cancelled (partial data: %d/%d pages): %w", len(pages), last, err)
		}

		data, _, err := w.fetcher.FetchPage(ctx, page)
		if err != nil {
			w.logger.Warn().
				Err(err).
				Int("page", page).
				Int("fetched_pages", len(pages)).
				Msg("Page fetch failed - returning partial results")
			return pages, fmt.Errorf("fetch page %d (partial data: %d/%d pages): %w", page, len(pages), last, err)
		}
		pages = append(pages, data)
	}

	w.logger.Debug().
		Int("pages", len(pages)).
		Int("total", totalPages).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return pages, nil
}
