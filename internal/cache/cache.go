package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

// Store is the byte-level backend behind SearchCache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Sweep drops expired entries.
	Sweep(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

type record struct {
	StoredAt time.Time              `json:"stored_at"`
	Response *models.SearchResponse `json:"response"`
}

// SearchCache stores whole responses for TTL. Every backend failure is
// returned as a CACHE_IO_FAILURE error and callers treat it as a miss.
type SearchCache struct {
	store   Store
	ttl     time.Duration
	enabled bool
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a SearchCache.
type Option func(*SearchCache)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *SearchCache) { c.logger = utils.OrNop(l) }
}

// WithNow replaces time.Now.
func WithNow(now func() time.Time) Option {
	return func(c *SearchCache) { c.now = now }
}

// New returns a cache over store. When enabled is false Get always misses and
// Set does nothing.
func New(store Store, ttl time.Duration, enabled bool, opts ...Option) *SearchCache {
	c := &SearchCache{
		store:   store,
		ttl:     ttl,
		enabled: enabled && store != nil,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Enabled reports whether the cache is active.
func (c *SearchCache) Enabled() bool { return c.enabled }

// TTL returns the entry lifetime.
func (c *SearchCache) TTL() time.Duration { return c.ttl }

// Get returns the response cached for opts if it is no older than the TTL.
// A stale entry is deleted and reported as a miss.
func (c *SearchCache) Get(ctx context.Context, opts *models.SearchOptions) (*models.SearchResponse, bool, error) {
	if !c.enabled {
		return nil, false, nil
	}
	key := Key(opts)
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, models.NewError(models.CodeCacheIOFailure, "cache read failed", err)
	}
	if !ok {
		return nil, false, nil
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Response == nil {
		_ = c.store.Delete(ctx, key)
		return nil, false, models.NewError(models.CodeCacheIOFailure, "corrupt cache entry", err)
	}
	if c.now().Sub(rec.StoredAt) > c.ttl {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Debug("Failed to evict stale cache entry", zap.Error(err))
		}
		return nil, false, nil
	}
	return rec.Response, true, nil
}

// Set overwrites the entry for opts, then sweeps expired entries.
func (c *SearchCache) Set(ctx context.Context, opts *models.SearchOptions, resp *models.SearchResponse) error {
	if !c.enabled {
		return nil
	}
	raw, err := json.Marshal(record{StoredAt: c.now(), Response: resp})
	if err != nil {
		return models.NewError(models.CodeCacheIOFailure, "failed to encode response", err)
	}
	if err := c.store.Set(ctx, Key(opts), raw, c.ttl); err != nil {
		return models.NewError(models.CodeCacheIOFailure, "cache write failed", err)
	}
	if n, err := c.store.Sweep(ctx); err != nil {
		c.logger.Debug("Cache sweep failed", zap.Error(err))
	} else if n > 0 {
		c.logger.Debug("Swept expired cache entries", zap.Int("removed", n))
	}
	return nil
}

// Clear empties the cache regardless of whether it is enabled.
func (c *SearchCache) Clear(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Clear(ctx); err != nil {
		return models.NewError(models.CodeCacheIOFailure, "cache clear failed", err)
	}
	return nil
}
