package cache

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/yanun0323/errors"

	"github.com/redadb/aitrader/internal/model"
)

const quoteKeyPrefix = "aitrader:quote:"

// Redis stores quotes as JSON values under a common key prefix, so several
// dashboard instances share one view of the market.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-connected client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) SetQuote(ctx context.Context, quote model.Quote) error {
	data, err := sonic.Marshal(quote)
	if err != nil {
		return errors.Wrap(err, "marshal quote")
	}
	if err := r.client.Set(ctx, quoteKeyPrefix+quote.Symbol, data, 0).Err(); err != nil {
		return errors.Wrap(err, "set quote")
	}
	return nil
}

func (r *Redis) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	data, err := r.client.Get(ctx, quoteKeyPrefix+symbol).Bytes()
	if err != nil {
		if err == redis.Nil {
			return model.Quote{}, ErrQuoteNotFound
		}
		return model.Quote{}, errors.Wrap(err, "get quote")
	}

	var quote model.Quote
	if err := sonic.Unmarshal(data, &quote); err != nil {
		return model.Quote{}, errors.Wrap(err, "unmarshal quote")
	}
	return quote, nil
}

func (r *Redis) AllQuotes(ctx context.Context) ([]model.Quote, error) {
	var quotes []model.Quote
	iter := r.client.Scan(ctx, 0, quoteKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var quote model.Quote
		if err := sonic.Unmarshal(data, &quote); err != nil {
			continue
		}
		quotes = append(quotes, quote)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "scan quotes")
	}
	return quotes, nil
}
