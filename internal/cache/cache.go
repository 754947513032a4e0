// Package cache keeps the latest quote per symbol so the API layer reads
// current prices without touching the upstream.
package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"github.com/redadb/aitrader/internal/model"
)

var ErrQuoteNotFound = errors.New("cache: quote not found")

// Cache stores the latest quote per symbol.
type Cache interface {
	SetQuote(ctx context.Context, quote model.Quote) error
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	AllQuotes(ctx context.Context) ([]model.Quote, error)
}

// New returns a Redis-backed cache when addr is set and answers a ping,
// otherwise an in-memory one.
func New(ctx context.Context, addr string) Cache {
	if addr == "" {
		return NewMemory()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		logs.Warnf("cache: redis %s unreachable, falling back to memory: %v", addr, err)
		_ = client.Close()
		return NewMemory()
	}
	logs.Infof("cache: using redis at %s", addr)
	return NewRedis(client)
}
