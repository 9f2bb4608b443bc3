package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Sternrassler/crunchbase-client/internal/snapshot"
	"github.com/Sternrassler/crunchbase-client/pkg/cache"
	"github.com/Sternrassler/crunchbase-client/pkg/client"
	"github.com/Sternrassler/crunchbase-client/pkg/crunchbase"
	"github.com/Sternrassler/crunchbase-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v3"
)

var prettyOpts = pretty.Options{
	Width:    80,
	Indent:   "  ",
	SortKeys: true,
}

// app holds the state shared by the subcommands of one run.
type app struct {
	out    io.Writer
	store  *cache.Memory
	api    *crunchbase.CrunchBase
	redis  *redis.Client
	snap   *snapshot.Store
	logger zerolog.Logger
}

func newApp(out io.Writer) *app {
	return &app{out: out}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "crunchbase",
		Usage: "query the CrunchBase API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "CrunchBase API key",
				Sources: cli.EnvVars("CRUNCHBASE_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "API base URL",
				Value:   crunchbase.DefaultBaseURL,
				Sources: cli.EnvVars("CRUNCHBASE_BASE_URL"),
			},
			&cli.StringFlag{
				Name:  "api-version",
				Usage: "API version",
				Value: crunchbase.DefaultVersion,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per request timeout",
				Value: 30 * time.Second,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn, error or disabled",
				Value:   string(logging.LevelWarn),
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "pretty-log",
				Usage: "human readable log output",
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "load the cache from Redis before the run and save it after",
				Sources: cli.EnvVars("REDIS_URL"),
			},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			a.entityCommand("company", "company data", crunchbase.NamespaceCompany),
			{
				Name:      "person",
				Usage:     "person data",
				ArgsUsage: "<first> [last...]",
				Action:    a.personAction,
			},
			a.entityCommand("financial-org", "financial organization data", crunchbase.NamespaceFinancialOrganization),
			a.entityCommand("product", "product data", crunchbase.NamespaceProduct),
			a.entityCommand("service-provider", "service provider data", crunchbase.NamespaceServiceProvider),
			{
				Name:      "list",
				Usage:     "list every entity of a kind",
				ArgsUsage: "<companies|people|financial-organizations|products|service-providers>",
				Action:    a.listAction,
			},
			{
				Name:      "search",
				Usage:     "full text search",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Usage: "result page", Value: 1},
					&cli.BoolFlag{Name: "all", Usage: "walk every result page"},
					&cli.IntFlag{Name: "max-pages", Usage: "page cap with --all, 0 means no cap"},
				},
				Action: a.searchAction,
			},
			{
				Name:      "investors",
				Usage:     "financial organizations that invested in a company",
				ArgsUsage: "<company>",
				Action:    a.investorsAction,
			},
			{
				Name:      "portfolio",
				Usage:     "companies a financial organization invested in",
				ArgsUsage: "<financial-org>",
				Action:    a.portfolioAction,
			},
			{
				Name:   "cache",
				Usage:  "print the cached entries",
				Action: a.cacheAction,
			},
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cmd.String("log-level")),
		Pretty: cmd.Bool("pretty-log"),
	})
	a.logger = logging.NewLogger(logging.ComponentCLI)

	// the store outlives a single Run, so one app can chain commands
	if a.store == nil {
		a.store = cache.NewMemory()
	}

	if addr := cmd.String("redis-addr"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return ctx, fmt.Errorf("connect to redis at %s: %w", addr, err)
		}
		a.redis = rdb
		a.snap = snapshot.New(rdb)

		n, err := a.snap.Load(ctx, a.store)
		if err != nil {
			return ctx, fmt.Errorf("load cache snapshot: %w", err)
		}
		a.logger.Info().Int("entries", n).Str("redis", addr).Msg("Cache snapshot loaded")
	}

	api, err := crunchbase.New(crunchbase.Config{
		APIKey:  cmd.String("api-key"),
		BaseURL: cmd.String("base-url"),
		Version: cmd.String("api-version"),
		Client: client.Config{
			Cache:   a.store,
			Timeout: cmd.Duration("timeout"),
		},
	})
	if err != nil {
		return ctx, err
	}
	a.api = api

	return ctx, nil
}

func (a *app) after(ctx context.Context, cmd *cli.Command) error {
	if a.snap == nil {
		return nil
	}
	defer a.redis.Close()

	if err := a.snap.Save(ctx, a.store.Entries()); err != nil {
		return fmt.Errorf("save cache snapshot: %w", err)
	}
	a.logger.Info().Int("entries", a.store.Len()).Msg("Cache snapshot saved")
	return nil
}

func (a *app) entityCommand(name, usage, namespace string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("%s: expected exactly one name", name)
			}
			res, err := a.api.Data(ctx, namespace, cmd.Args().First())
			if err != nil {
				return err
			}
			return a.printResult(res)
		},
	}
}

func (a *app) personAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("person: expected a name")
	}
	res, err := a.api.Person(ctx, cmd.Args().Slice()...)
	if err != nil {
		return err
	}
	return a.printResult(res)
}

var listKinds = map[string]string{
	"companies":               crunchbase.NamespaceCompanies,
	"people":                  crunchbase.NamespacePeople,
	"financial-organizations": crunchbase.NamespaceFinancialOrganizations,
	"products":                crunchbase.NamespaceProducts,
	"service-providers":       crunchbase.NamespaceServiceProviders,
}

func (a *app) listAction(ctx context.Context, cmd *cli.Command) error {
	namespace, ok := listKinds[cmd.Args().First()]
	if !ok {
		kinds := make([]string, 0, len(listKinds))
		for k := range listKinds {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		return fmt.Errorf("list: unknown kind %q (want one of %v)", cmd.Args().First(), kinds)
	}

	res, err := a.api.List(ctx, namespace)
	if err != nil {
		return err
	}
	return a.printResult(res)
}

func (a *app) searchAction(ctx context.Context, cmd *cli.Command) error {
	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("search: expected a query")
	}

	if !cmd.Bool("all") {
		res, err := a.api.Search(ctx, query, int(cmd.Int("page")))
		if err != nil {
			return err
		}
		return a.printResult(res)
	}

	results, err := a.api.SearchAll(ctx, query, int(cmd.Int("max-pages")))
	if err != nil && len(results) == 0 {
		return err
	}
	if err != nil {
		a.logger.Warn().Err(err).Int("results", len(results)).Msg("Search incomplete")
	}

	raws := make([]json.RawMessage, 0, len(results))
	for _, r := range results {
		raws = append(raws, json.RawMessage(r.Raw))
	}
	return a.printJSON(raws)
}

func (a *app) investorsAction(ctx context.Context, cmd *cli.Command) error {
	investors, err := a.api.ListCompanyInvestors(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	return a.printJSON(investors)
}

func (a *app) portfolioAction(ctx context.Context, cmd *cli.Command) error {
	portfolio, err := a.api.ListInvestorPortfolio(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	return a.printJSON(portfolio)
}

func (a *app) cacheAction(ctx context.Context, cmd *cli.Command) error {
	return a.printJSON(cache.Summarize(a.api.CacheSnapshot()))
}

func (a *app) printResult(res gjson.Result) error {
	_, err := a.out.Write(pretty.PrettyOptions([]byte(res.Raw), &prettyOpts))
	return err
}

func (a *app) printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = a.out.Write(pretty.PrettyOptions(data, &prettyOpts))
	return err
}
