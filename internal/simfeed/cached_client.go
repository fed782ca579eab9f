package simfeed

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// CachedClient wraps a SimSource with snapshot caching
type CachedClient struct {
	source SimSource
	cache  *SnapshotCache
	logger *logrus.Logger
}

// NewCachedClient creates a caching simulation client
func NewCachedClient(cfg *config.SimulationConfig, logger *logrus.Logger) *CachedClient {
	return WrapWithCache(NewClient(cfg, logger), cfg, logger)
}

// WrapWithCache wraps an existing source with a cache
func WrapWithCache(source SimSource, cfg *config.SimulationConfig, logger *logrus.Logger) *CachedClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachedClient{
		source: source,
		cache: NewSnapshotCache(
			time.Duration(cfg.CacheTTLSeconds)*time.Second,
			cfg.CacheMaxSize,
		),
		logger: logger,
	}
}

// GetSnapshot retrieves simulation probabilities with caching
func (c *CachedClient) GetSnapshot(ctx context.Context, homeTeam, awayTeam string, week int) (*models.SimulationSnapshot, error) {
	key := NewCacheKey(homeTeam, awayTeam, week)

	if cached := c.cache.Get(key); cached != nil {
		c.logger.WithField("cache_key", key.String()).Debug("Cache hit for simulation snapshot")
		return cached, nil
	}

	c.logger.WithField("cache_key", key.String()).Debug("Cache miss, fetching simulation snapshot")
	snapshot, err := c.source.GetSnapshot(ctx, homeTeam, awayTeam, week)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, snapshot)
	return snapshot, nil
}

// InvalidateAll clears all cached snapshots
func (c *CachedClient) InvalidateAll() {
	c.cache.Clear()
}

// CacheStats returns cache statistics
func (c *CachedClient) CacheStats() (hits, misses uint64, ratio float64) {
	return c.cache.Stats()
}
