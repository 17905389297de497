package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matchcore/orderbook/internal/types"
)

// PostgresOrderStore implements OrderStore using PostgreSQL
type PostgresOrderStore struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStore creates a new PostgreSQL-backed order store
func NewPostgresOrderStore(cfg PostgresConfig) (*PostgresOrderStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := openPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &PostgresOrderStore{pool: pool}, nil
}

const upsertOrderSQL = `
	INSERT INTO orders (order_id, user_id, symbol, order_type, side, price, quantity, remaining, sequence, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (order_id) DO UPDATE
	SET remaining = EXCLUDED.remaining, status = EXCLUDED.status
`

func (s *PostgresOrderStore) Save(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, upsertOrderSQL,
		order.ID, order.UserID, order.Symbol, int16(order.OrderType), int16(order.Side),
		int64(order.Price), int64(order.Quantity), int64(order.Remaining),
		order.Sequence, string(order.Status), order.Timestamp,
	)
	return err
}

func (s *PostgresOrderStore) Get(orderID uint64) (*types.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
		SELECT order_id, user_id, symbol, order_type, side, price, quantity, remaining, sequence, status, created_at
		FROM orders WHERE order_id = $1
	`, orderID)

	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %d not found", orderID)
	}
	return order, err
}

func (s *PostgresOrderStore) Remove(orderID uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	return err
}

func (s *PostgresOrderStore) Update(order *types.Order) error {
	// Upsert covers both insert and update
	return s.Save(order)
}

func (s *PostgresOrderStore) GetAll() []*types.Order {
	return s.queryOrders(`
		SELECT order_id, user_id, symbol, order_type, side, price, quantity, remaining, sequence, status, created_at
		FROM orders ORDER BY sequence
	`)
}

func (s *PostgresOrderStore) GetByUser(userID string) []*types.Order {
	return s.queryOrders(`
		SELECT order_id, user_id, symbol, order_type, side, price, quantity, remaining, sequence, status, created_at
		FROM orders WHERE user_id = $1 ORDER BY sequence
	`, userID)
}

func (s *PostgresOrderStore) GetBySide(side types.SideType) []*types.Order {
	return s.queryOrders(`
		SELECT order_id, user_id, symbol, order_type, side, price, quantity, remaining, sequence, status, created_at
		FROM orders WHERE side = $1 ORDER BY sequence
	`, int16(side))
}

func (s *PostgresOrderStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresOrderStore) queryOrders(query string, args ...any) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return []*types.Order{}
	}
	defer rows.Close()

	var orders []*types.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders
}

func scanOrder(row pgx.Row) (*types.Order, error) {
	var order types.Order
	var orderType, side int16
	var price, quantity, remaining int64
	var status string

	err := row.Scan(
		&order.ID, &order.UserID, &order.Symbol, &orderType, &side,
		&price, &quantity, &remaining, &order.Sequence, &status, &order.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	order.OrderType = types.OrderType(orderType)
	order.Side = types.SideType(side)
	order.Price = types.Price(price)
	order.Quantity = types.Quantity(quantity)
	order.Remaining = types.Quantity(remaining)
	order.Status = types.OrderStatus(status)
	return &order, nil
}
