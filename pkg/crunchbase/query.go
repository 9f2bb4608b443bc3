package crunchbase

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/Sternrassler/crunchbase-client/pkg/cache"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldASCII decomposes s (NFKD) and drops every non-ASCII rune, so
// diacritics disappear and the base letters stay ("café" -> "cafe").
func foldASCII(s string) string {
	// transform chains carry state, so build one per call
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	return out
}

// NormalizeQuery turns a permalink or free-text query into the form used in
// request paths: spaces become '+', text is folded to ASCII and lower-cased.
//
//	"Kapor Capital" -> "kapor+capital"
func NormalizeQuery(query string) string {
	query = strings.ReplaceAll(strings.TrimSpace(query), " ", "+")
	return strings.ToLower(foldASCII(query))
}

// NormalizeSearchTerm folds a search term to lower-case ASCII. Spaces are
// kept; query string encoding turns them into '+'.
func NormalizeSearchTerm(term string) string {
	return strings.ToLower(foldASCII(strings.TrimSpace(term)))
}

// personPermalink joins name parts into a person permalink:
// ("Mark", "Zuckerberg") -> "mark-zuckerberg".
func personPermalink(names ...string) string {
	joined := strings.Join(names, "-")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(joined)), " ", "-")
}

// BuildURL returns the request URL for namespace and an optional entity
// name: {base}/v{version}/{namespace}[/{name}.js]?{options}&api_key={key}.
// The API key is added only when one is configured.
func (c *CrunchBase) BuildURL(namespace, name string, options url.Values) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(c.config.BaseURL, "/"))
	b.WriteString("/v")
	b.WriteString(c.config.Version)
	b.WriteString("/")
	b.WriteString(namespace)

	if n := NormalizeQuery(name); n != "" {
		b.WriteString("/")
		b.WriteString(url.PathEscape(n))
		b.WriteString(".js")
	}

	values := url.Values{}
	for k, v := range options {
		values[k] = append([]string(nil), v...)
	}
	if c.config.APIKey != "" {
		values.Set(cache.SecretQueryParam, c.config.APIKey)
	}
	if encoded := values.Encode(); encoded != "" {
		b.WriteString("?")
		b.WriteString(encoded)
	}

	return b.String()
}

// entityURL builds the URL of a single entity and rejects names that
// normalize to nothing.
func (c *CrunchBase) entityURL(namespace, name string) (string, error) {
	if NormalizeQuery(name) == "" {
		return "", fmt.Errorf("%w: empty %s name %q", ErrInvalidQuery, namespace, name)
	}
	return c.BuildURL(namespace, name, nil), nil
}
