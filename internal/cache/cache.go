// Package cache stores materialized article rankings.
package cache

import (
	"context"
	"time"

	"github.com/hindinewshub/news-api/internal/models"
)

// RankingCache stores ranking snapshots keyed by kind and category
type RankingCache interface {
	// Get returns the cached ranking, or nil on a miss
	Get(ctx context.Context, kind models.RankingKind, category string) (*models.Ranking, error)
	Set(ctx context.Context, ranking *models.Ranking, ttl time.Duration) error
	Close() error
}

// Key builds the storage key for a ranking. An empty category is the global list.
func Key(kind models.RankingKind, category string) string {
	if category == "" {
		category = "all"
	}
	return "rankings:" + string(kind) + ":" + category
}
