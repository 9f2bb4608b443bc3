package cache

import "sync"

// Store maps exact request URLs to cache entries.
type Store interface {
	// Get returns the entry stored for url.
	Get(url string) (*CacheEntry, bool)

	// Set stores entry for url, replacing any previous entry.
	Set(url string, entry *CacheEntry)

	// Entries returns a copy of the whole mapping.
	Entries() map[string]*CacheEntry

	// Len returns the number of stored entries.
	Len() int
}

var _ Store = (*Memory)(nil)

// Memory is an unbounded in-memory Store. Entries live until they are
// overwritten or the Memory is discarded; there is no eviction or TTL.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*CacheEntry),
	}
}

// Get returns a copy of the entry stored for url.
func (m *Memory) Get(url string) (*CacheEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[url]
	if !ok {
		return nil, false
	}
	return entry.Clone(), true
}

// Set stores a copy of entry for url. Nil entries are ignored.
func (m *Memory) Set(url string, entry *CacheEntry) {
	if entry == nil {
		return
	}

	m.mu.Lock()
	m.entries[url] = entry.Clone()
	size := len(m.entries)
	m.mu.Unlock()

	CacheEntries.Set(float64(size))
}

// Entries returns a copy of every stored entry keyed by request URL.
func (m *Memory) Entries() map[string]*CacheEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]*CacheEntry, len(m.entries))
	for url, entry := range m.entries {
		out[url] = entry.Clone()
	}
	return out
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
