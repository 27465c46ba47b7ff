// internal/infrastructure/cache/redis/context_cache.go
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"crypto-market-context/internal/core/domain/marketcontext"
)

// ContextCache - Redis-кэш снапшотов рыночного контекста.
// Значения хранятся как JSON под префиксованными ключами с TTL,
// срок жизни записей — забота Redis, не движка.
type ContextCache struct {
	client *redis.Client
	prefix string
}

// Options - параметры подключения
type Options struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewContextCache создает кэш контекстов
func NewContextCache(opts Options) *ContextCache {
	return &ContextCache{
		client: redis.NewClient(&redis.Options{
			Addr:         opts.Addr,
			Password:     opts.Password,
			DB:           opts.DB,
			PoolSize:     opts.PoolSize,
			MinIdleConns: opts.MinIdleConns,
			DialTimeout:  opts.DialTimeout,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		}),
		prefix: "marketctx:",
	}
}

// NewContextCacheWithClient создает кэш поверх готового клиента
func NewContextCacheWithClient(client *redis.Client) *ContextCache {
	return &ContextCache{client: client, prefix: "marketctx:"}
}

// Ping проверяет доступность Redis
func (c *ContextCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetContext читает снапшот по ключу. Промах — (nil, nil).
func (c *ContextCache) GetContext(ctx context.Context, key string) (*marketcontext.Snapshot, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var snap marketcontext.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("разбор снапшота %s: %w", key, err)
	}
	return &snap, nil
}

// SetContext пишет снапшот по ключу с TTL
func (c *ContextCache) SetContext(ctx context.Context, key string,
	snap *marketcontext.Snapshot, ttl time.Duration) error {

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("маршалинг снапшота %s: %w", key, err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (c *ContextCache) Close() error {
	return c.client.Close()
}
