package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/config"
	"github.com/at-ishikawa/notekeeper/internal/record"
)

const (
	keyPrefix     = "notekeeper:period"
	generationKey = keyPrefix + ":generation"
)

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping() > %w", err)
	}
	return client, nil
}

// cachedRecord keeps the fields that are hidden from the API representation.
type cachedRecord struct {
	Record     record.Record `json:"record"`
	CategoryID string        `json:"categoryId,omitempty"`
	FolderIDs  []string      `json:"folderIds,omitempty"`
}

// RedisCache implements PeriodCache on redis.
// Entries are namespaced by a generation counter, so Invalidate is a single INCR
// and stale entries expire with their TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("client.Get(%s) > %w", generationKey, err)
	}
	return gen, nil
}

func entryKey(version Version, key string) string {
	return fmt.Sprintf("%s:v%d:%s", keyPrefix, version, key)
}

// Get looks key up in the current generation and returns that generation on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]record.Record, Version, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("failed to read cache generation", zap.Error(err))
		return nil, NoVersion, false
	}
	version := Version(gen)
	entryKey := entryKey(version, key)

	data, err := c.client.Get(ctx, entryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("period cache miss", zap.String("key", key))
		return nil, version, false
	}
	if err != nil {
		c.logger.Warn("failed to read period cache", zap.String("key", key), zap.Error(err))
		return nil, NoVersion, false
	}

	var cached []cachedRecord
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn("dropping corrupted period cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, entryKey)
		return nil, version, false
	}
	records := make([]record.Record, 0, len(cached))
	for _, e := range cached {
		r := e.Record
		r.CategoryID = e.CategoryID
		r.FolderIDs = e.FolderIDs
		records = append(records, r)
	}
	c.logger.Debug("period cache hit", zap.String("key", key))
	return records, version, true
}

// Set stores records under the generation Get returned. When an Invalidate happened
// in between, the entry lands in a generation nobody reads and expires with its TTL.
func (c *RedisCache) Set(ctx context.Context, key string, version Version, records []record.Record) {
	if version == NoVersion {
		return
	}

	cached := make([]cachedRecord, 0, len(records))
	for _, r := range records {
		cached = append(cached, cachedRecord{Record: r, CategoryID: r.CategoryID, FolderIDs: r.FolderIDs})
	}
	data, err := json.Marshal(cached)
	if err != nil {
		c.logger.Warn("failed to encode period cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, entryKey(version, key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to write period cache", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.logger.Warn("failed to invalidate period cache", zap.Error(err))
	}
}
