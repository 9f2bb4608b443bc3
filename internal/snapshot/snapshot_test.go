package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/crunchbase-client/pkg/cache"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis on DB 15 and skips the test when
// none is running. The integration build tag runs the same checks against a
// container.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func testEntries() map[string]*cache.CacheEntry {
	return map[string]*cache.CacheEntry{
		"http://api.crunchbase.com/v1/company/acme.js?api_key=k": {
			Data:       []byte(`{"name":"Acme"}`),
			ETag:       "abc",
			URL:        "http://api.crunchbase.com/v1/company/acme.js",
			StatusCode: 200,
			CachedAt:   time.Date(2013, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		"http://api.crunchbase.com/v1/person/jane-doe.js?api_key=k": {
			Data:         []byte(`{"first_name":"Jane"}`),
			LastModified: "Wed, 01 May 2013 12:00:00 GMT",
			URL:          "http://api.crunchbase.com/v1/person/jane-doe.js",
			StatusCode:   200,
			CachedAt:     time.Date(2013, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestNew_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("New should panic with nil redis client")
		}
	}()
	New(nil)
}

func TestNew_Options(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	s := New(client, WithPrefix("test:"), WithTTL(-time.Second))
	if s.prefix != "test:" {
		t.Errorf("prefix = %q, want %q", s.prefix, "test:")
	}
	if s.ttl != 0 {
		t.Errorf("negative ttl should be clamped to 0, got %v", s.ttl)
	}
	if got := s.Key("http://x/v1/companies"); got != "test:http://x/v1/companies" {
		t.Errorf("Key() = %q", got)
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"valid", `{"data":"e30=","etag":"abc","url":"u","status_code":200}`, false},
		{"empty body", `{"data":"","url":"u","status_code":200}`, false},
		{"not json", `not json`, true},
		{"null body", `{"data":null,"status_code":200}`, true},
		{"non-2xx status", `{"data":"e30=","status_code":404}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := decodeEntry([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEntry) {
					t.Fatalf("expected ErrInvalidEntry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if entry == nil {
				t.Fatal("expected entry")
			}
		})
	}
}

func TestSaveEmpty(t *testing.T) {
	// no round trip is made for an empty snapshot
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	if err := New(client).Save(context.Background(), nil); err != nil {
		t.Fatalf("Save(nil) error = %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	client := setupTestRedis(t)
	runSaveAndLoad(t, client)
}

func TestLoadSkipsInvalidEntries(t *testing.T) {
	client := setupTestRedis(t)
	runLoadSkipsInvalid(t, client)
}

func TestSaveWithTTL(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	s := New(client, WithTTL(time.Minute))
	if err := s.Save(ctx, testEntries()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	for url := range testEntries() {
		ttl, err := client.TTL(ctx, s.Key(url)).Result()
		if err != nil {
			t.Fatalf("TTL() error = %v", err)
		}
		if ttl <= 0 || ttl > time.Minute {
			t.Errorf("TTL(%s) = %v, want (0, 1m]", url, ttl)
		}
	}
}

func TestClear(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	s := New(client)
	if err := s.Save(ctx, testEntries()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := client.Set(ctx, "unrelated", "v", 0).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	store := cache.NewMemory()
	n, err := s.Load(ctx, store)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Load() after Clear = %d entries, want 0", n)
	}
	if client.Exists(ctx, "unrelated").Val() != 1 {
		t.Error("Clear removed a key outside the prefix")
	}
}

func runSaveAndLoad(t *testing.T, client *redis.Client) {
	t.Helper()
	ctx := context.Background()

	s := New(client)
	want := testEntries()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	store := cache.NewMemory()
	n, err := s.Load(ctx, store)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != len(want) {
		t.Fatalf("Load() = %d entries, want %d", n, len(want))
	}

	for url, w := range want {
		got, ok := store.Get(url)
		if !ok {
			t.Fatalf("entry %s not loaded", url)
		}
		if string(got.Data) != string(w.Data) {
			t.Errorf("Data = %s, want %s", got.Data, w.Data)
		}
		if got.ETag != w.ETag || got.LastModified != w.LastModified {
			t.Errorf("validators = (%q, %q), want (%q, %q)", got.ETag, got.LastModified, w.ETag, w.LastModified)
		}
		if got.URL != w.URL || got.StatusCode != w.StatusCode {
			t.Errorf("got %+v, want %+v", got, w)
		}
		if !got.CachedAt.Equal(w.CachedAt) {
			t.Errorf("CachedAt = %v, want %v", got.CachedAt, w.CachedAt)
		}
	}
}

func runLoadSkipsInvalid(t *testing.T, client *redis.Client) {
	t.Helper()
	ctx := context.Background()

	s := New(client)
	if err := s.Save(ctx, testEntries()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := client.Set(ctx, s.Key("http://api.crunchbase.com/v1/broken.js"), "garbage", 0).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	store := cache.NewMemory()
	n, err := s.Load(ctx, store)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Load() = %d entries, want 2", n)
	}
	if _, ok := store.Get("http://api.crunchbase.com/v1/broken.js"); ok {
		t.Error("invalid entry was loaded")
	}
}
