// Package snapshot persists a client's response cache to Redis so that a
// later process can resume with warm validators. The library itself never
// persists anything; commands call Save and Load around their run.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/crunchbase-client/pkg/cache"
	"github.com/Sternrassler/crunchbase-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultPrefix namespaces snapshot keys in Redis.
const DefaultPrefix = "crunchbase:cache:"

// ErrInvalidEntry indicates a stored entry that cannot be decoded.
var ErrInvalidEntry = errors.New("invalid snapshot entry")

// Store saves and loads cache snapshots in Redis.
type Store struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithTTL expires saved entries after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates a snapshot store backed by redisClient.
func New(redisClient *redis.Client, opts ...Option) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}

	s := &Store{
		redis:  redisClient,
		prefix: DefaultPrefix,
		logger: logging.NewLogger(logging.ComponentSnapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl < 0 {
		s.ttl = 0
	}
	return s
}

// Key returns the Redis key for a request URL. The request URL is kept
// verbatim so that a loaded snapshot matches future lookups exactly.
func (s *Store) Key(requestURL string) string {
	return s.prefix + requestURL
}

// Save writes every entry in a single pipeline.
func (s *Store) Save(ctx context.Context, entries map[string]*cache.CacheEntry) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := s.redis.Pipeline()
	for requestURL, entry := range entries {
		if entry == nil {
			continue
		}
		data, err := json.Marshal(entry)
		if err != nil {
			cache.CacheErrors.WithLabelValues("snapshot_save").Inc()
			return fmt.Errorf("marshal cache entry: %w", err)
		}
		pipe.Set(ctx, s.Key(requestURL), data, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		cache.CacheErrors.WithLabelValues("snapshot_save").Inc()
		return fmt.Errorf("redis pipeline: %w", err)
	}

	s.logger.Debug().Int("entries", len(entries)).Msg("Snapshot saved")
	return nil
}

// Load copies every stored entry into store and returns how many were
// loaded. Entries that cannot be decoded are skipped and counted as
// errors; redis failures abort the load.
func (s *Store) Load(ctx context.Context, store cache.Store) (int, error) {
	loaded := 0

	iter := s.redis.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		data, err := s.redis.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// expired between SCAN and GET
				continue
			}
			cache.CacheErrors.WithLabelValues("snapshot_load").Inc()
			return loaded, fmt.Errorf("redis get: %w", err)
		}

		entry, err := decodeEntry(data)
		if err != nil {
			cache.CacheErrors.WithLabelValues("snapshot_load").Inc()
			s.logger.Warn().Err(err).Str("key", cache.CanonicalURL(key)).Msg("Skipping snapshot entry")
			continue
		}

		store.Set(key[len(s.prefix):], entry)
		loaded++
	}
	if err := iter.Err(); err != nil {
		cache.CacheErrors.WithLabelValues("snapshot_load").Inc()
		return loaded, fmt.Errorf("redis scan: %w", err)
	}

	s.logger.Debug().Int("entries", loaded).Msg("Snapshot loaded")
	return loaded, nil
}

// Clear removes every snapshot entry under the store's prefix.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.redis.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			cache.CacheErrors.WithLabelValues("snapshot_clear").Inc()
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

func decodeEntry(data []byte) (*cache.CacheEntry, error) {
	var entry cache.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if entry.Data == nil || entry.StatusCode < 200 || entry.StatusCode > 299 {
		return nil, fmt.Errorf("%w: missing body or non-2xx status %d", ErrInvalidEntry, entry.StatusCode)
	}
	return &entry, nil
}
