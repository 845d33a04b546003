package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

const stockItemsKeyPrefix = "stock_health:items"

// StockItemsCache stores the classified stock listing of a stored dataset.
type StockItemsCache interface {
	GetItems(ctx context.Context, source string, status domain.StockStatus) ([]domain.ClassifiedStockItem, bool, error)
	SetItems(ctx context.Context, source string, status domain.StockStatus, items []domain.ClassifiedStockItem) error
	InvalidateAll(ctx context.Context) error
}

type redisStockItemsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopStockItemsCache struct{}

// NewRedisStockItemsCache wraps an existing client.
func NewRedisStockItemsCache(client *redis.Client, ttl time.Duration) StockItemsCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisStockItemsCache{client: client, ttl: ttl}
}

func NewNoopStockItemsCache() StockItemsCache {
	return &noopStockItemsCache{}
}

func (c *redisStockItemsCache) GetItems(ctx context.Context, source string, status domain.StockStatus) ([]domain.ClassifiedStockItem, bool, error) {
	payload, err := c.client.Get(ctx, buildStockItemsKey(source, status)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.ClassifiedStockItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode stock items cache: %w", err)
	}

	return items, true, nil
}

func (c *redisStockItemsCache) SetItems(ctx context.Context, source string, status domain.StockStatus, items []domain.ClassifiedStockItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode stock items cache: %w", err)
	}

	if err := c.client.Set(ctx, buildStockItemsKey(source, status), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisStockItemsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, stockItemsKeyPrefix, scanBatchSize)
}

func (n *noopStockItemsCache) GetItems(ctx context.Context, source string, status domain.StockStatus) ([]domain.ClassifiedStockItem, bool, error) {
	return nil, false, nil
}

func (n *noopStockItemsCache) SetItems(ctx context.Context, source string, status domain.StockStatus, items []domain.ClassifiedStockItem) error {
	return nil
}

func (n *noopStockItemsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildStockItemsKey(source string, status domain.StockStatus) string {
	filter := "all"
	if status != "" {
		filter = strings.ToLower(string(status))
	}
	return fmt.Sprintf("%s:%s:%s", stockItemsKeyPrefix, ContentKey([]byte(strings.TrimSpace(source))), filter)
}
