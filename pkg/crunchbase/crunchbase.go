// Package crunchbase provides typed access to the CrunchBase v1 API:
// entity lookups (company, person, financial organization, product,
// service provider), list and search endpoints, and two aggregation
// helpers built on top of them. All transport and caching is delegated to
// the caching client in pkg/client.
package crunchbase

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/Sternrassler/crunchbase-client/pkg/cache"
	"github.com/Sternrassler/crunchbase-client/pkg/client"
	"github.com/Sternrassler/crunchbase-client/pkg/logging"
	"github.com/Sternrassler/crunchbase-client/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Namespaces served by the API.
const (
	NamespaceCompany               = "company"
	NamespacePerson                = "person"
	NamespaceFinancialOrganization = "financial-organization"
	NamespaceProduct               = "product"
	NamespaceServiceProvider       = "service-provider"
	NamespaceSearch                = "search"

	NamespaceCompanies              = "companies"
	NamespacePeople                 = "people"
	NamespaceFinancialOrganizations = "financial-organizations"
	NamespaceProducts               = "products"
	NamespaceServiceProviders       = "service-providers"
)

// Defaults for Config.
const (
	DefaultBaseURL = "http://api.crunchbase.com"
	DefaultVersion = "1"

	// SearchPageSize is the number of results the search endpoint returns per page.
	SearchPageSize = 10
)

// Fetcher performs cached GET requests. *client.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
	CacheEntry(rawURL string) (*cache.CacheEntry, bool)
	CacheSnapshot() map[string]*cache.CacheEntry
}

var _ Fetcher = (*client.Client)(nil)

// Config holds the API configuration.
type Config struct {
	// APIKey is sent as the api_key query parameter when not empty
	APIKey string

	// BaseURL of the API, without version
	BaseURL string

	// Version of the API, rendered as /v{Version}/
	Version string

	// Fetcher overrides the caching client built from Client
	Fetcher Fetcher

	// Client configures the caching client when Fetcher is nil
	Client client.Config
}

// DefaultConfig returns a configuration for the public API.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		Version: DefaultVersion,
		Client:  client.DefaultConfig(),
	}
}

// CrunchBase is the API client.
type CrunchBase struct {
	fetcher Fetcher
	config  Config
	logger  zerolog.Logger
}

// New creates an API client. Each call builds its own cache unless
// cfg.Fetcher or cfg.Client.Cache is supplied.
func New(cfg Config) (*CrunchBase, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		if cfg.Client.Validate == nil {
			cfg.Client.Validate = ValidateBody
		}
		c, err := client.New(cfg.Client)
		if err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
		fetcher = c
	}

	return &CrunchBase{
		fetcher: fetcher,
		config:  cfg,
		logger:  logging.NewLogger(logging.ComponentAPI),
	}, nil
}

// GetJSON fetches rawURL and decodes the body leniently.
func (c *CrunchBase) GetJSON(ctx context.Context, rawURL string) (gjson.Result, error) {
	c.logger.Debug().Str("url", cache.CanonicalURL(rawURL)).Msg("Requesting")

	body, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return gjson.Result{}, err
	}

	result, err := Decode(body)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", cache.CanonicalURL(rawURL)).Msg("Malformed response")
		return gjson.Result{}, err
	}
	return result, nil
}

// Data returns the entity called name in namespace.
func (c *CrunchBase) Data(ctx context.Context, namespace, name string) (gjson.Result, error) {
	u, err := c.entityURL(namespace, name)
	if err != nil {
		return gjson.Result{}, err
	}
	return c.GetJSON(ctx, u)
}

// Company returns the data about a company.
func (c *CrunchBase) Company(ctx context.Context, name string) (gjson.Result, error) {
	return c.Data(ctx, NamespaceCompany, name)
}

// Person returns the data about a person. Name parts are joined with '-'.
func (c *CrunchBase) Person(ctx context.Context, names ...string) (gjson.Result, error) {
	return c.Data(ctx, NamespacePerson, personPermalink(names...))
}

// FinancialOrganization returns the data about a financial organization.
func (c *CrunchBase) FinancialOrganization(ctx context.Context, name string) (gjson.Result, error) {
	return c.Data(ctx, NamespaceFinancialOrganization, name)
}

// Product returns the data about a product.
func (c *CrunchBase) Product(ctx context.Context, name string) (gjson.Result, error) {
	return c.Data(ctx, NamespaceProduct, name)
}

// ServiceProvider returns the data about a service provider.
func (c *CrunchBase) ServiceProvider(ctx context.Context, name string) (gjson.Result, error) {
	return c.Data(ctx, NamespaceServiceProvider, name)
}

// List returns the full listing of a plural namespace such as "companies".
func (c *CrunchBase) List(ctx context.Context, namespace string) (gjson.Result, error) {
	return c.GetJSON(ctx, c.BuildURL(namespace, "", nil))
}

func (c *CrunchBase) ListCompanies(ctx context.Context) (gjson.Result, error) {
	return c.List(ctx, NamespaceCompanies)
}

func (c *CrunchBase) ListPeople(ctx context.Context) (gjson.Result, error) {
	return c.List(ctx, NamespacePeople)
}

func (c *CrunchBase) ListFinancialOrganizations(ctx context.Context) (gjson.Result, error) {
	return c.List(ctx, NamespaceFinancialOrganizations)
}

func (c *CrunchBase) ListProducts(ctx context.Context) (gjson.Result, error) {
	return c.List(ctx, NamespaceProducts)
}

func (c *CrunchBase) ListServiceProviders(ctx context.Context) (gjson.Result, error) {
	return c.List(ctx, NamespaceServiceProviders)
}

// SearchURL returns the request URL for one page of a search.
func (c *CrunchBase) SearchURL(query string, page int) string {
	return c.BuildURL(NamespaceSearch, "", url.Values{
		"query": {NormalizeSearchTerm(query)},
		"page":  {strconv.Itoa(page)},
	})
}

// Search returns one page of search results. Pages start at 1.
func (c *CrunchBase) Search(ctx context.Context, query string, page int) (gjson.Result, error) {
	if NormalizeSearchTerm(query) == "" {
		return gjson.Result{}, fmt.Errorf("%w: empty search query %q", ErrInvalidQuery, query)
	}
	if page < 1 {
		page = 1
	}
	return c.GetJSON(ctx, c.SearchURL(query, page))
}

// SearchAll walks the search result pages in order, up to maxPages pages
// (0 means all), and returns the concatenated "results" arrays.
func (c *CrunchBase) SearchAll(ctx context.Context, query string, maxPages int) ([]gjson.Result, error) {
	fetchPage := pagination.PageFetcherFunc(func(ctx context.Context, page int) ([]byte, int, error) {
		res, err := c.Search(ctx, query, page)
		if err != nil {
			return nil, 0, err
		}
		total := res.Get("total")
		if total.Exists() && total.Type != gjson.Number {
			return nil, 0, malformed("search total is not a number")
		}
		pages := int(math.Ceil(total.Float() / SearchPageSize))
		return []byte(res.Raw), pages, nil
	})

	bodies, walkErr := pagination.NewWalker(fetchPage, pagination.Config{MaxPages: maxPages}).FetchAllPages(ctx)

	results := []gjson.Result{}
	for i, body := range bodies {
		list := gjson.GetBytes(body, "results")
		if !list.IsArray() {
			return results, malformed("search page %d: results is not a list", i+1)
		}
		results = append(results, list.Array()...)
	}

	return results, walkErr
}

// Cache returns the cache entry for the exact request URL rawURL.
func (c *CrunchBase) Cache(rawURL string) (*cache.CacheEntry, bool) {
	return c.fetcher.CacheEntry(rawURL)
}

// CacheSnapshot returns a copy of the whole cache keyed by request URL.
func (c *CrunchBase) CacheSnapshot() map[string]*cache.CacheEntry {
	return c.fetcher.CacheSnapshot()
}
