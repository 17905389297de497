package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matchcore/orderbook/internal/types"
)

const (
	orderKeyPrefix   = "order:"
	userOrdersPrefix = "user_orders:"
	sideOrdersPrefix = "side_orders:"
)

// RedisOrderStore implements OrderStore using Redis
type RedisOrderStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOrderStore creates a new Redis-backed order store
func NewRedisOrderStore(cfg RedisConfig) (*RedisOrderStore, error) {
	client, err := dialRedis(cfg)
	if err != nil {
		return nil, err
	}

	ttl := cfg.OrderTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisOrderStore{client: client, ttl: ttl}, nil
}

func (s *RedisOrderStore) Save(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()

	orderKey := fmt.Sprintf("%s%d", orderKeyPrefix, order.ID)
	pipe.Set(ctx, orderKey, data, s.ttl)

	userKey := fmt.Sprintf("%s%s", userOrdersPrefix, order.UserID)
	pipe.SAdd(ctx, userKey, order.ID)
	pipe.Expire(ctx, userKey, s.ttl)

	sideKey := fmt.Sprintf("%s%d", sideOrdersPrefix, order.Side)
	pipe.SAdd(ctx, sideKey, order.ID)
	pipe.Expire(ctx, sideKey, s.ttl)

	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisOrderStore) Get(orderID uint64) (*types.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	orderKey := fmt.Sprintf("%s%d", orderKeyPrefix, orderID)
	data, err := s.client.Get(ctx, orderKey).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("order %d not found", orderID)
	}
	if err != nil {
		return nil, err
	}

	var order types.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

func (s *RedisOrderStore) Remove(orderID uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Get order first to clean up indexes
	order, err := s.Get(orderID)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()

	orderKey := fmt.Sprintf("%s%d", orderKeyPrefix, orderID)
	pipe.Del(ctx, orderKey)

	userKey := fmt.Sprintf("%s%s", userOrdersPrefix, order.UserID)
	pipe.SRem(ctx, userKey, orderID)

	sideKey := fmt.Sprintf("%s%d", sideOrdersPrefix, order.Side)
	pipe.SRem(ctx, sideKey, orderID)

	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisOrderStore) Update(order *types.Order) error {
	// For Redis, update is same as save (upsert)
	return s.Save(order)
}

func (s *RedisOrderStore) GetAll() []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Scan for all order keys (note: can be slow with many keys)
	pattern := orderKeyPrefix + "*"
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return []*types.Order{}
	}

	return s.getOrdersByKeys(ctx, keys)
}

func (s *RedisOrderStore) GetByUser(userID string) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userKey := fmt.Sprintf("%s%s", userOrdersPrefix, userID)
	orderIDs, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return []*types.Order{}
	}

	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = orderKeyPrefix + id
	}

	return s.getOrdersByKeys(ctx, keys)
}

func (s *RedisOrderStore) GetBySide(side types.SideType) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sideKey := fmt.Sprintf("%s%d", sideOrdersPrefix, side)
	orderIDs, err := s.client.SMembers(ctx, sideKey).Result()
	if err != nil {
		return []*types.Order{}
	}

	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = orderKeyPrefix + id
	}

	return s.getOrdersByKeys(ctx, keys)
}

func (s *RedisOrderStore) Close() error {
	return s.client.Close()
}

// getOrdersByKeys is a helper to fetch multiple orders by their keys
func (s *RedisOrderStore) getOrdersByKeys(ctx context.Context, keys []string) []*types.Order {
	if len(keys) == 0 {
		return []*types.Order{}
	}

	// Use MGET for efficient batch retrieval
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return []*types.Order{}
	}

	var orders []*types.Order
	for _, result := range results {
		if result == nil {
			continue
		}

		data, ok := result.(string)
		if !ok {
			continue
		}

		var order types.Order
		if err := json.Unmarshal([]byte(data), &order); err != nil {
			continue
		}

		orders = append(orders, &order)
	}

	return orders
}
