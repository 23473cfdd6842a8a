// Package app wires configuration, storage, the remote API client and the
// catalog services into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/pokecatalog/internal/adapter/provider/pokeapi"
	"github.com/heartmarshall/pokecatalog/internal/cache"
	"github.com/heartmarshall/pokecatalog/internal/config"
	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/observe"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
	"github.com/heartmarshall/pokecatalog/internal/service/catalog"
	"github.com/heartmarshall/pokecatalog/internal/service/query"
	"github.com/heartmarshall/pokecatalog/internal/transform"
	"github.com/heartmarshall/pokecatalog/internal/transport/middleware"
	"github.com/heartmarshall/pokecatalog/internal/transport/rest"
)

const serviceName = "pokecatalog"

// App holds the wired services. Build it with New and release it with Close.
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	cache    *cache.Cache
	checks   map[string]rest.Pinger
	provider *observe.Provider
	metrics  *observe.Metrics

	Aggregator *aggregator.Service
	Query      *query.Service
	Catalog    *catalog.Service
}

// New opens the cache backend and builds the catalog services. Metrics are
// exported only when cfg.Metrics.Enabled is set.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: logger, metrics: observe.Nop()}

	if cfg.Metrics.Enabled {
		p, err := observe.InitProvider(serviceName, Version)
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		a.provider = p
		a.metrics = p.Metrics
	}

	store, checks, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		a.shutdownProvider()
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Driver, err)
	}
	a.checks = checks
	a.cache = cache.New(store, logger)

	client := pokeapi.NewClient(cfg.Fetch, logger, a.metrics)
	agg, err := aggregator.NewService(logger, a.cache, client,
		func() aggregator.Fetcher { return pokeapi.NewFetcher(client, cfg.Fetch) },
		a.metrics,
		aggregator.Config{
			Window:     domain.Window{Offset: cfg.Catalog.Offset, Limit: cfg.Catalog.Limit},
			URLLimit:   cfg.Catalog.URLLimit,
			RunTimeout: cfg.Catalog.RunTimeout,
			Policy:     PolicyFrom(cfg.Catalog.Levels),
		},
	)
	if err != nil {
		_ = a.cache.Close()
		a.shutdownProvider()
		return nil, err
	}

	a.Aggregator = agg
	a.Query = query.NewService(logger, agg, cfg.Catalog)
	a.Catalog = catalog.NewService(logger, agg, a.cache)
	a.Catalog.RestoreViewState(ctx)
	return a, nil
}

// PolicyFrom converts configured category=level pairs into a ruleset policy.
// Names are checked when the aggregator is built.
func PolicyFrom(levels map[string]string) transform.Policy {
	p := make(transform.Policy, len(levels))
	for c, l := range levels {
		p[domain.Category(c)] = transform.Level(l)
	}
	return p
}

// Handler builds the HTTP handler with the full middleware chain. stop
// releases the rate limiter.
func (a *App) Handler() (h http.Handler, stop func()) {
	var metricsHandler http.Handler
	if a.provider != nil {
		metricsHandler = a.provider.Handler
	}

	router := rest.NewRouter(
		rest.NewCatalogHandler(a.Query, a.Catalog, a.Aggregator, a.log),
		rest.NewHealthHandler(a.Aggregator, a.checks, BuildVersion()),
		metricsHandler,
		a.cfg.Metrics.Path,
	)

	limiter := middleware.NewRateLimiter(time.Minute)
	chain := middleware.Chain(
		middleware.Recovery(a.log),
		middleware.RequestID(),
		middleware.Logger(a.log),
		middleware.Metrics(a.metrics, router.Route),
		middleware.CORS(a.cfg.CORS),
		limiter.Limit(a.cfg.Server.RateLimit),
	)
	return chain(router), limiter.Stop
}

// Serve runs the HTTP server until ctx ends, then shuts it down gracefully.
// With warm_on_start the catalog is aggregated in the background; requests
// answer 503 until it is ready.
func (a *App) Serve(ctx context.Context) error {
	handler, stopLimiter := a.Handler()
	defer stopLimiter()

	srv := &http.Server{
		Addr:         net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	if a.cfg.Catalog.WarmOnStart {
		go a.warm(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down", slog.Duration("timeout", a.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (a *App) warm(ctx context.Context) {
	snap, err := a.Aggregator.Warm(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.log.Error("initial aggregation failed", slog.String("error", err.Error()))
		}
		return
	}
	a.log.Info("catalog warmed",
		slog.Int("entities", len(snap.References)),
		slog.Any("from_cache", snap.FromCache),
	)
}

// Close stops in-flight runs and releases the cache and metrics provider.
func (a *App) Close(ctx context.Context) error {
	a.Aggregator.Close()
	err := a.cache.Close()
	if a.provider != nil {
		err = errors.Join(err, a.provider.Shutdown(ctx))
	}
	return err
}

func (a *App) shutdownProvider() {
	if a.provider != nil {
		_ = a.provider.Shutdown(context.Background())
	}
}
