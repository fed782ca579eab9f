package simfeed

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/teams"
)

// CacheKey identifies a cached snapshot by game
type CacheKey struct {
	HomeSlug string
	AwaySlug string
	Week     int
}

// NewCacheKey builds a key from raw team names
func NewCacheKey(homeTeam, awayTeam string, week int) CacheKey {
	return CacheKey{
		HomeSlug: teams.CanonicalSlug(homeTeam),
		AwaySlug: teams.CanonicalSlug(awayTeam),
		Week:     week,
	}
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%s:%d", k.HomeSlug, k.AwaySlug, k.Week)
}

// SnapshotCache provides in-memory caching for simulation snapshots
type SnapshotCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewSnapshotCache creates a new snapshot cache
func NewSnapshotCache(ttl time.Duration, maxSize int) *SnapshotCache {
	return &SnapshotCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached snapshot
func (sc *SnapshotCache) Get(key CacheKey) *models.SimulationSnapshot {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if result, found := sc.cache.Get(key.String()); found {
		if snapshot, ok := result.(*models.SimulationSnapshot); ok {
			sc.hitCount++
			sc.updateMetrics()
			return snapshot
		}
	}

	sc.missCount++
	sc.updateMetrics()
	return nil
}

// Set stores a snapshot in cache
func (sc *SnapshotCache) Set(key CacheKey, snapshot *models.SimulationSnapshot) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.cache.ItemCount() >= sc.maxSize {
		sc.cache.DeleteExpired()
	}

	sc.cache.Set(key.String(), snapshot, sc.ttl)
}

// Clear flushes the entire cache
func (sc *SnapshotCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cache.Flush()
	sc.hitCount = 0
	sc.missCount = 0
}

// Stats returns cache statistics
func (sc *SnapshotCache) Stats() (hits, misses uint64, ratio float64) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.statsLocked()
}

// ItemCount returns the number of items in cache
func (sc *SnapshotCache) ItemCount() int {
	return sc.cache.ItemCount()
}

func (sc *SnapshotCache) statsLocked() (hits, misses uint64, ratio float64) {
	hits = sc.hitCount
	misses = sc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (sc *SnapshotCache) updateMetrics() {
	_, _, ratio := sc.statsLocked()
	metrics.SimCacheHitRate.Set(ratio)
}
