package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matchcore/orderbook/internal/types"
)

const recentTradesKey = "trades:recent"

// RedisTradeStore implements TradeStore using a capped Redis list of the
// most recent trades, newest first.
type RedisTradeStore struct {
	client    *redis.Client
	maxTrades int64
}

// NewRedisTradeStore creates a new Redis-backed trade store
func NewRedisTradeStore(cfg RedisConfig) (*RedisTradeStore, error) {
	client, err := dialRedis(cfg)
	if err != nil {
		return nil, err
	}

	maxTrades := int64(cfg.MaxTrades)
	if maxTrades <= 0 {
		maxTrades = 10000
	}

	return &RedisTradeStore{client: client, maxTrades: maxTrades}, nil
}

func (s *RedisTradeStore) Save(trade *types.Trade) error {
	return s.SaveBatch([]*types.Trade{trade})
}

func (s *RedisTradeStore) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	values := make([]interface{}, 0, len(trades))
	for _, trade := range trades {
		data, err := json.Marshal(trade)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, recentTradesKey, values...)
	pipe.LTrim(ctx, recentTradesKey, 0, s.maxTrades-1)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	entries, err := s.client.LRange(ctx, recentTradesKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	trades := make([]*types.Trade, 0, len(entries))
	for _, entry := range entries {
		var trade types.Trade
		if err := json.Unmarshal([]byte(entry), &trade); err != nil {
			continue
		}
		trades = append(trades, &trade)
	}

	return trades, nil
}

func (s *RedisTradeStore) Close() error {
	return s.client.Close()
}
