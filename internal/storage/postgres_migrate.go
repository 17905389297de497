package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Prices and quantities are stored as integer ticks/units, never as SQL
// decimals or floats; the application scale reconstructs decimals on read.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id    BIGINT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	order_type  SMALLINT NOT NULL,
	side        SMALLINT NOT NULL,
	price       BIGINT NOT NULL,
	quantity    BIGINT NOT NULL,
	remaining   BIGINT NOT NULL,
	sequence    BIGINT NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id);
CREATE INDEX IF NOT EXISTS idx_orders_side ON orders (side);

CREATE TABLE IF NOT EXISTS trades (
	trade_id       BIGINT PRIMARY KEY,
	buy_order_id   BIGINT NOT NULL,
	sell_order_id  BIGINT NOT NULL,
	maker_order_id BIGINT NOT NULL,
	taker_order_id BIGINT NOT NULL,
	price          BIGINT NOT NULL,
	quantity       BIGINT NOT NULL,
	executed_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_executed_at ON trades (executed_at DESC);
`

// RunMigrations executes the database migrations. A proper migration tool
// (e.g. golang-migrate) can replace this once the schema starts evolving.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
