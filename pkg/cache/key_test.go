package cache

import "testing"

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "only api key",
			raw:  "http://api.crunchbase.com/v1/company/facebook.js?api_key=secret",
			want: "http://api.crunchbase.com/v1/company/facebook.js",
		},
		{
			name: "api key first",
			raw:  "http://api.crunchbase.com/v1/search?api_key=secret&page=1&query=kapor+capital",
			want: "http://api.crunchbase.com/v1/search?page=1&query=kapor+capital",
		},
		{
			name: "api key in the middle",
			raw:  "http://api.crunchbase.com/v1/search?page=2&api_key=secret&query=acme",
			want: "http://api.crunchbase.com/v1/search?page=2&query=acme",
		},
		{
			name: "no query string",
			raw:  "http://api.crunchbase.com/v1/companies",
			want: "http://api.crunchbase.com/v1/companies",
		},
		{
			name: "no api key",
			raw:  "http://api.crunchbase.com/v1/search?query=acme",
			want: "http://api.crunchbase.com/v1/search?query=acme",
		},
		{
			name: "similar parameter name is kept",
			raw:  "http://example.com/x?api_key_hint=1&api_key=s",
			want: "http://example.com/x?api_key_hint=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalURL(tt.raw); got != tt.want {
				t.Errorf("CanonicalURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestCanonicalURL_Determinism ensures same input always produces same output
func TestCanonicalURL_Determinism(t *testing.T) {
	raw := "http://api.crunchbase.com/v1/search?api_key=k&page=1&query=acme"
	first := CanonicalURL(raw)
	for i := 0; i < 10; i++ {
		if got := CanonicalURL(raw); got != first {
			t.Errorf("result[%d] = %v, want %v (not deterministic)", i, got, first)
		}
	}
}
