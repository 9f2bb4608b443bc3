package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMemory_SetAndGet(t *testing.T) {
	m := NewMemory()
	url := "http://api.crunchbase.com/v1/company/acme.js?api_key=k"

	if _, ok := m.Get(url); ok {
		t.Fatal("Get on empty cache should miss")
	}

	entry := &CacheEntry{
		Data:         []byte(`{"name":"Acme"}`),
		ETag:         "abc",
		LastModified: "Sun, 01 Jan 2023 12:00:00 GMT",
		URL:          CanonicalURL(url),
		StatusCode:   200,
	}
	m.Set(url, entry)

	got, ok := m.Get(url)
	if !ok {
		t.Fatal("Get after Set should hit")
	}
	if string(got.Data) != string(entry.Data) {
		t.Errorf("Data mismatch: got %s, want %s", got.Data, entry.Data)
	}
	if got.ETag != "abc" {
		t.Errorf("ETag mismatch: got %s, want abc", got.ETag)
	}
	if got.URL != "http://api.crunchbase.com/v1/company/acme.js" {
		t.Errorf("URL mismatch: got %s", got.URL)
	}
}

func TestMemory_Overwrite(t *testing.T) {
	m := NewMemory()
	url := "http://example.com/a"

	m.Set(url, &CacheEntry{Data: []byte("old"), ETag: "1"})
	m.Set(url, &CacheEntry{Data: []byte("new"), ETag: "2"})

	got, _ := m.Get(url)
	if string(got.Data) != "new" || got.ETag != "2" {
		t.Errorf("entry not overwritten: %+v", got)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMemory_KeyIsExactURL(t *testing.T) {
	m := NewMemory()
	m.Set("http://example.com/a?page=1", &CacheEntry{Data: []byte("1")})

	if _, ok := m.Get("http://example.com/a?page=2"); ok {
		t.Error("different query string must not share an entry")
	}
	if _, ok := m.Get("http://example.com/a"); ok {
		t.Error("missing query string must not share an entry")
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	entry := &CacheEntry{Data: []byte("body")}
	m.Set("u", entry)

	// Mutating the caller's entry must not leak into the cache
	entry.Data[0] = 'X'
	got, _ := m.Get("u")
	if string(got.Data) != "body" {
		t.Errorf("Set did not copy entry: %s", got.Data)
	}

	// Nor must mutating a returned entry
	got.Data[0] = 'Y'
	again, _ := m.Get("u")
	if string(again.Data) != "body" {
		t.Errorf("Get did not copy entry: %s", again.Data)
	}

	all := m.Entries()
	all["u"].ETag = "mutated"
	all["v"] = &CacheEntry{}
	if m.Len() != 1 {
		t.Errorf("Entries() map is shared with cache")
	}
}

func TestMemory_SetNil(t *testing.T) {
	m := NewMemory()
	m.Set("u", nil)
	if m.Len() != 0 {
		t.Error("nil entry should not be stored")
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := fmt.Sprintf("http://example.com/%d", i%5)
			m.Set(url, &CacheEntry{Data: []byte("x")})
			m.Get(url)
			m.Entries()
		}(i)
	}
	wg.Wait()

	if m.Len() != 5 {
		t.Errorf("Len() = %d, want 5", m.Len())
	}
}

func TestMemory_EntriesGaugeFollowsLastWrite(t *testing.T) {
	a := NewMemory()
	b := NewMemory()

	a.Set("http://x/1", &CacheEntry{Data: []byte("{}"), StatusCode: 200})
	a.Set("http://x/2", &CacheEntry{Data: []byte("{}"), StatusCode: 200})
	if got := testutil.ToFloat64(CacheEntries); got != 2 {
		t.Errorf("gauge = %v after writing store a, want 2", got)
	}

	b.Set("http://x/1", &CacheEntry{Data: []byte("{}"), StatusCode: 200})
	if got := testutil.ToFloat64(CacheEntries); got != 1 {
		t.Errorf("gauge = %v after writing store b, want 1", got)
	}
}
