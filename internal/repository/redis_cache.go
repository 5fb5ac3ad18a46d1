package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/portfolio-content-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// redisCache stores each slot under a prefixed string key
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisClient opens a client with retries disabled
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: -1,
	})
}

// NewRedisCache creates a draft cache backed by redis
func NewRedisCache(client *redis.Client, keyPrefix string) DraftCache {
	return &redisCache{client: client, prefix: keyPrefix}
}

func (r *redisCache) key(slot string) string {
	return r.prefix + slot
}

func (r *redisCache) Get(ctx context.Context, slot string) ([]byte, error) {
	payload, err := r.client.Get(ctx, r.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *redisCache) Put(ctx context.Context, slot string, payload []byte) error {
	return r.client.Set(ctx, r.key(slot), payload, 0).Err()
}

func (r *redisCache) Delete(ctx context.Context, slot string) error {
	return r.client.Del(ctx, r.key(slot)).Err()
}

func (r *redisCache) Slots(ctx context.Context) ([]string, error) {
	var (
		slots  []string
		cursor uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			slots = append(slots, strings.TrimPrefix(k, r.prefix))
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(slots)
	return slots, nil
}
