// Package testutil provides testing utilities for the CrunchBase client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockResponse defines the behavior for a mock CrunchBase endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockCrunchBase is a configurable mock CrunchBase server for testing.
// Handlers are matched on the request path (query string ignored).
type MockCrunchBase struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requestCount     int
	conditionalCount int
	lastRequest      *http.Request
}

// NewMockCrunchBase creates a new mock CrunchBase server.
func NewMockCrunchBase() *MockCrunchBase {
	mock := &MockCrunchBase{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastRequest = r.Clone(r.Context())
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.conditionalCount++
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		http.Error(w, `{"error": "Sorry, we could not find the record you were looking for."}`, http.StatusNotFound)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCrunchBase) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCrunchBase) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockCrunchBase) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.lastRequest = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockCrunchBase) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockCrunchBase) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetJSON serves body as a 200 response carrying etag (quoted on the wire).
// Conditional requests matching etag are answered with 304.
func (m *MockCrunchBase) SetJSON(path, etag, body string) {
	m.SetHandler(path, NewConditionalHandler(etag, "", body))
}

// RequestCount returns the number of requests made to the server.
func (m *MockCrunchBase) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// ConditionalCount returns the number of conditional requests.
func (m *MockCrunchBase) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// LastRequest returns a copy of the last request received, or nil.
func (m *MockCrunchBase) LastRequest() *http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequest
}

// NewJSONResponse creates a standard 200 OK JSON response.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "text/javascript; charset=utf-8",
		},
	}
}

// NewNotModifiedResponse creates a 304 Not Modified response.
func NewNotModifiedResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusNotModified}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "Sorry, we could not find the record you were looking for."}`,
		Headers: map[string]string{
			"Content-Type": "text/javascript; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewConditionalHandler creates a handler that answers 304 when the request
// carries a matching If-None-Match (unquoted etag) or If-Modified-Since
// (exact lastModified). Either validator may be empty.
func NewConditionalHandler(etag, lastModified, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")

		if (etag != "" && r.Header.Get("If-None-Match") == etag) ||
			(lastModified != "" && r.Header.Get("If-Modified-Since") == lastModified) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if etag != "" {
			w.Header().Set("ETag", `"`+etag+`"`)
		}
		if lastModified != "" {
			w.Header().Set("Last-Modified", lastModified)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}
