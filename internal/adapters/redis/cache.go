// Package redis caches workflow exports in Redis so external tooling can
// inspect compiled graphs without re-parsing sources.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/espalier/pkg/flow"
	backend "github.com/redis/go-redis/v9"
)

// Cache implements ports.ExportCache using Redis.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the expiration for cached exports.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached exports.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New creates a Redis cache with options.
func New(address, password string, db int, opts ...Option) *Cache {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	cache := &Cache{
		client: client,
		prefix: "espalier:export:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

func (c *Cache) key(name string) string {
	return c.prefix + name
}

func (c *Cache) indexKey() string {
	return c.prefix + "index"
}

// Put stores the export, replacing any previous one for the same workflow.
func (c *Cache) Put(ctx context.Context, name string, export *flow.Export) error {
	data, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	pipe := c.client.Pipeline()

	// 1. Save JSON with TTL (0 keeps the key forever).
	pipe.Set(ctx, c.key(name), data, c.ttl)

	// 2. Add to index (ZSET). Score = expiry time; no TTL scores far future
	// so lazy cleanup leaves it alone.
	score := float64(time.Now().Add(c.ttl).Unix())
	if c.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, c.indexKey(), backend.Z{
		Score:  score,
		Member: name,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save export to redis: %w", err)
	}
	return nil
}

// Get retrieves a stored export.
func (c *Cache) Get(ctx context.Context, name string) (*flow.Export, error) {
	val, err := c.client.Get(ctx, c.key(name)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, flow.ErrExportNotFound
		}
		return nil, fmt.Errorf("failed to get export from redis: %w", err)
	}

	var export flow.Export
	if err := json.Unmarshal([]byte(val), &export); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export: %w", err)
	}
	return &export, nil
}

// Delete removes the export for a workflow.
func (c *Cache) Delete(ctx context.Context, name string) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, c.key(name))
	pipe.ZRem(ctx, c.indexKey(), name)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns cached workflow names, pruning expired index entries lazily.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := c.client.ZRemRangeByScore(ctx, c.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired exports: %w", err)
	}

	names, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return names, nil
}

// Close releases the underlying client connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
