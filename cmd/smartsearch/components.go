package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/smartsearch/internal/analytics"
	"github.com/hyperjump/smartsearch/internal/cache"
	"github.com/hyperjump/smartsearch/internal/config"
	"github.com/hyperjump/smartsearch/internal/extract"
	"github.com/hyperjump/smartsearch/internal/index"
	"github.com/hyperjump/smartsearch/internal/indexer"
	"github.com/hyperjump/smartsearch/internal/metrics"
	"github.com/hyperjump/smartsearch/internal/search"
	"github.com/hyperjump/smartsearch/internal/storage"
)

// components holds initialized services.
type components struct {
	Storage *storage.SQLiteStorage
	Index   *index.Manager
	Engine  *search.Engine
	Indexer *indexer.Indexer
	Metrics *metrics.Metrics

	closers []func() error
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*components, error) {
	c := &components{Metrics: metrics.New()}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = store
	c.closers = append(c.closers, store.Close)

	backend, err := newCacheStore(ctx, cfg, c)
	if err != nil {
		c.Close()
		return nil, err
	}
	searchCache := cache.New(backend, cfg.Cache.Timeout, cfg.Cache.EnabledOrDefault(), cache.WithLogger(logger))

	c.Index = index.NewManager(search.IndexOptions(cfg), index.WithLogger(logger))
	c.closers = append(c.closers, c.Index.Close)

	c.Engine = search.NewEngine(c.Index,
		search.WithConfig(search.ConfigFrom(cfg)),
		search.WithCache(searchCache),
		search.WithAnalytics(analytics.NewRecorder(cfg.Analytics.MaxEvents, analytics.WithLogger(logger))),
		search.WithMetrics(c.Metrics),
		search.WithLogger(logger),
		search.WithCatalog(store),
	)
	c.Indexer = indexer.NewIndexer(store, c.Engine, extract.NewExtractor(),
		indexer.WithLogger(logger),
		indexer.WithExtensions(cfg.Watch.Extensions),
		indexer.WithWorkers(cfg.Watch.Workers),
	)
	logger.Info("Components initialized",
		zap.String("database", cfg.Storage.DatabasePath),
		zap.String("term_index", cfg.Storage.TermIndexPath),
		zap.String("cache_backend", cfg.Cache.Backend))
	return c, nil
}

func newCacheStore(ctx context.Context, cfg *config.Config, c *components) (cache.Store, error) {
	if cfg.Cache.Backend != "redis" {
		return cache.NewMemoryStore(cfg.Cache.MaxEntries), nil
	}
	r := cfg.Cache.Redis
	rdb, err := cache.DialRedis(ctx, r.Addr, r.Password, r.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	store := cache.NewRedisStore(rdb, r.KeyPrefix)
	c.closers = append(c.closers, store.Close)
	return store, nil
}
