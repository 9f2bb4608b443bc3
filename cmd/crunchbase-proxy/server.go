package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/crunchbase-client/pkg/cache"
	"github.com/Sternrassler/crunchbase-client/pkg/client"
	"github.com/Sternrassler/crunchbase-client/pkg/crunchbase"
	"github.com/Sternrassler/crunchbase-client/pkg/logging"
	"github.com/Sternrassler/crunchbase-client/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

const requestTimeout = 30 * time.Second

var entityNamespaces = map[string]bool{
	crunchbase.NamespaceCompany:               true,
	crunchbase.NamespacePerson:                true,
	crunchbase.NamespaceFinancialOrganization: true,
	crunchbase.NamespaceProduct:               true,
	crunchbase.NamespaceServiceProvider:       true,
}

var listNamespaces = map[string]bool{
	crunchbase.NamespaceCompanies:              true,
	crunchbase.NamespacePeople:                 true,
	crunchbase.NamespaceFinancialOrganizations: true,
	crunchbase.NamespaceProducts:               true,
	crunchbase.NamespaceServiceProviders:       true,
}

type server struct {
	api    *crunchbase.CrunchBase
	redis  *redis.Client
	logger zerolog.Logger
}

func newServer(api *crunchbase.CrunchBase, redisClient *redis.Client) *server {
	return &server{
		api:    api,
		redis:  redisClient,
		logger: logging.NewLogger(logging.ComponentProxy),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(s.redis))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/{namespace}/{name}", s.entityHandler)
	mux.HandleFunc("GET /api/list/{namespace}", s.listHandler)
	mux.HandleFunc("GET /api/search", s.searchHandler)
	mux.HandleFunc("GET /api/investors/{name}", s.investorsHandler)
	mux.HandleFunc("GET /api/portfolio/{name}", s.portfolioHandler)
	mux.HandleFunc("GET /api/cache", s.cacheHandler)

	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports 503 while the snapshot Redis is unreachable. Without
// Redis the proxy is always ready.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, "Redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

func (s *server) entityHandler(w http.ResponseWriter, r *http.Request) {
	namespace := r.PathValue("namespace")
	if !entityNamespaces[namespace] {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown namespace %q", namespace))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.api.Data(ctx, namespace, r.PathValue("name"))
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeResult(w, r, res)
}

func (s *server) listHandler(w http.ResponseWriter, r *http.Request) {
	namespace := r.PathValue("namespace")
	if !listNamespaces[namespace] {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown list %q", namespace))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.api.List(ctx, namespace)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeResult(w, r, res)
}

func (s *server) searchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")

	page := 1
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		page = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if q.Get("all") != "true" {
		res, err := s.api.Search(ctx, query, page)
		if err != nil {
			s.writeUpstreamError(w, err)
			return
		}
		writeResult(w, r, res)
		return
	}

	maxPages, _ := strconv.Atoi(q.Get("max_pages"))
	results, err := s.api.SearchAll(ctx, query, maxPages)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	raws := make([]json.RawMessage, 0, len(results))
	for _, res := range results {
		raws = append(raws, json.RawMessage(res.Raw))
	}
	writeJSON(w, http.StatusOK, raws)
}

func (s *server) investorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	investors, err := s.api.ListCompanyInvestors(ctx, r.PathValue("name"))
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, investors)
}

func (s *server) portfolioHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	portfolio, err := s.api.ListInvestorPortfolio(ctx, r.PathValue("name"))
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

func (s *server) cacheHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cache.Summarize(s.api.CacheSnapshot()))
}

// writeUpstreamError maps a client error onto a proxy status code.
func (s *server) writeUpstreamError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway

	switch {
	case errors.Is(err, crunchbase.ErrInvalidQuery):
		status = http.StatusBadRequest
	case client.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	s.logger.Warn().Err(err).Int("status", status).Str("class", string(client.Class(err))).Msg("CrunchBase request failed")
	writeError(w, status, err.Error())
}

// writeResult writes the upstream JSON unchanged, or indented when the
// request asks for ?pretty=true.
func writeResult(w http.ResponseWriter, r *http.Request, res gjson.Result) {
	body := []byte(res.Raw)
	if r.URL.Query().Get("pretty") == "true" {
		body = pretty.Pretty(body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
