package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client caches current asking prices and stock counts so the price-copy /
// overlay reads never touch the core stores. Redis is a read cache only;
// the in-memory ledger stays authoritative.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func priceKey(itemID string) string {
	return fmt.Sprintf("price:%s", itemID)
}

func stockKey(itemID string) string {
	return fmt.Sprintf("stock:%s", itemID)
}

// SetPrice caches the asking price for an item
func (c *Client) SetPrice(ctx context.Context, itemID string, price int64) error {
	return c.rdb.Set(ctx, priceKey(itemID), price, 0).Err()
}

// GetPrice retrieves the cached asking price for an item.
// Returns found=false on a cache miss.
func (c *Client) GetPrice(ctx context.Context, itemID string) (price int64, found bool, err error) {
	price, err = c.rdb.Get(ctx, priceKey(itemID)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

// SetStock caches the stock count for an item
func (c *Client) SetStock(ctx context.Context, itemID string, stock int) error {
	return c.rdb.Set(ctx, stockKey(itemID), stock, 0).Err()
}

// GetStock retrieves the cached stock count for an item
func (c *Client) GetStock(ctx context.Context, itemID string) (stock int, found bool, err error) {
	stock, err = c.rdb.Get(ctx, stockKey(itemID)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}

// SyncItem caches price and stock for one item in a pipeline
func (c *Client) SyncItem(ctx context.Context, itemID string, price *int64, stock int) error {
	pipe := c.rdb.Pipeline()
	if price != nil {
		pipe.Set(ctx, priceKey(itemID), *price, 0)
	} else {
		pipe.Del(ctx, priceKey(itemID))
	}
	pipe.Set(ctx, stockKey(itemID), stock, 0)

	_, err := pipe.Exec(ctx)
	return err
}
