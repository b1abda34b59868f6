package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hindinewshub/news-api/internal/models"
)

type memoryEntry struct {
	ranking *models.Ranking
	expires time.Time
}

// MemoryCache keeps rankings in process, for single-instance deployments and tests
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, kind models.RankingKind, category string) (*models.Ranking, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[Key(kind, category)]
	if !ok || (!e.expires.IsZero() && !c.now().Before(e.expires)) {
		return nil, nil
	}
	copied := *e.ranking
	return &copied, nil
}

func (c *MemoryCache) Set(_ context.Context, ranking *models.Ranking, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := memoryEntry{ranking: ranking}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[Key(ranking.Kind, ranking.Category)] = e
	return nil
}

func (c *MemoryCache) Close() error { return nil }
