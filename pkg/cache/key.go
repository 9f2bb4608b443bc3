package cache

import (
	"net/url"
	"strings"
)

// SecretQueryParam is the query parameter carrying the API key.
const SecretQueryParam = "api_key"

// CanonicalURL returns rawURL with the API key query parameter removed.
// The remaining parameters keep their order. Unparseable input is returned as is.
//
// Example:
//
//	http://api.crunchbase.com/v1/company/facebook.js?api_key=secret
//	-> http://api.crunchbase.com/v1/company/facebook.js
func CanonicalURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL
	}

	parts := strings.Split(u.RawQuery, "&")
	kept := parts[:0]
	for _, p := range parts {
		name, _, _ := strings.Cut(p, "=")
		if name == SecretQueryParam || p == "" {
			continue
		}
		kept = append(kept, p)
	}

	u.RawQuery = strings.Join(kept, "&")
	u.ForceQuery = false
	return u.String()
}
