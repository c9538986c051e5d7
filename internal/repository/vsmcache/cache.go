// Package vsmcache persists built vector space models in a key-value store so
// repeated runs over the same corpus skip the build.
package vsmcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snowball/internal/db"
	"github.com/kailas-cloud/snowball/internal/vsm"
)

// KeyPrefix namespaces model snapshots in shared stores.
const KeyPrefix = "snowball:vsm:"

// store is the consumer interface for the model cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cache loads models by corpus identity.
type Cache struct {
	store         store
	cacheTotal    *prometheus.CounterVec
	buildDuration prometheus.Observer
	logger        *zap.Logger
}

// New creates a model cache. A nil store disables caching.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"corrupt");
// buildDuration may be nil.
func New(
	s store,
	cacheTotal *prometheus.CounterVec,
	buildDuration prometheus.Observer,
	logger *zap.Logger,
) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:         s,
		cacheTotal:    cacheTotal,
		buildDuration: buildDuration,
		logger:        logger,
	}
}

// Key returns the store key of a corpus identity.
func Key(identity string) string {
	return KeyPrefix + identity
}

// LoadOrBuild returns the cached model for identity or calls build and stores
// the result. Cache failures are logged and never fail the call.
func (c *Cache) LoadOrBuild(
	ctx context.Context,
	identity string,
	build func() (*vsm.Model, error),
) (*vsm.Model, error) {
	key := Key(identity)

	if c.store != nil {
		if m, ok := c.getFromCache(ctx, key, identity); ok {
			c.incCache("hit")
			return m, nil
		}
	}
	c.incCache("miss")

	start := time.Now()
	m, err := build()
	if err != nil {
		return nil, fmt.Errorf("build vector space model: %w", err)
	}
	if c.buildDuration != nil {
		c.buildDuration.Observe(time.Since(start).Seconds())
	}
	c.logger.Info("Built vector space model",
		zap.Int("vocabulary", m.Size()),
		zap.Int("documents", m.Documents()),
		zap.Duration("took", time.Since(start)))

	if c.store != nil {
		c.putToCache(ctx, key, m)
	}
	return m, nil
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache) getFromCache(ctx context.Context, key, identity string) (*vsm.Model, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached model", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	m, err := vsm.Decode(data, identity)
	if err != nil {
		c.incCache("corrupt")
		c.logger.Warn("Discarding unreadable cached model", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	c.logger.Debug("Loaded vector space model from cache",
		zap.String("key", key), zap.Int("vocabulary", m.Size()))
	return m, true
}

func (c *Cache) putToCache(ctx context.Context, key string, m *vsm.Model) {
	data, err := vsm.Encode(m)
	if err != nil {
		c.logger.Warn("Failed to encode model", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("Failed to cache model", zap.String("key", key), zap.Error(err))
	}
}
