package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hindinewshub/news-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores each ranking as a JSON value with a TTL
type RedisCache struct {
	client *redis.Client
}

// NewRedisCacheFromURL connects to Redis and verifies the connection
func NewRedisCacheFromURL(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, kind models.RankingKind, category string) (*models.Ranking, error) {
	data, err := c.client.Get(ctx, Key(kind, category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var ranking models.Ranking
	if err := json.Unmarshal(data, &ranking); err != nil {
		return nil, fmt.Errorf("decode ranking: %w", err)
	}
	return &ranking, nil
}

func (c *RedisCache) Set(ctx context.Context, ranking *models.Ranking, ttl time.Duration) error {
	data, err := json.Marshal(ranking)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, Key(ranking.Kind, ranking.Category), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// New picks Redis when a URL is configured and the in-process cache otherwise
func New(redisURL string) (RankingCache, error) {
	if redisURL == "" {
		return NewMemoryCache(), nil
	}
	return NewRedisCacheFromURL(redisURL)
}
