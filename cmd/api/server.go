package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/matchcore/orderbook/config"
	"github.com/matchcore/orderbook/internal/api/handlers"
	"github.com/matchcore/orderbook/internal/api/logger"
	"github.com/matchcore/orderbook/internal/api/routes"
	"github.com/matchcore/orderbook/internal/feed"
	"github.com/matchcore/orderbook/internal/matching"
	"github.com/matchcore/orderbook/internal/storage"
	"github.com/matchcore/orderbook/internal/types"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.SetMinLevel(logger.ParseLevel(cfg.Logger.Level))

	logger.Info("Starting matching engine API server", map[string]interface{}{
		"version": "1.0.0",
		"symbol":  cfg.Engine.Symbol,
	})

	scale := types.NewPriceScale(int32(cfg.Engine.PriceScale))

	// Build storage layers based on configuration
	orderStore, tradeStore := buildStorageLayers(cfg)

	// Optional websocket market-data feed. The listener runs after the
	// originating intent has released the book lock, so querying the
	// engine for the fresh top of book is safe here.
	var tradeFeed *feed.Feed
	var engine *matching.Engine
	var engineOpts []matching.Option
	if cfg.Feed.Enabled {
		tradeFeed = feed.NewFeed(scale, cfg.Feed.ClientBuffer)
		engineOpts = append(engineOpts, matching.WithTradeListener(func(trade *types.Trade) {
			tradeFeed.Publish(trade)
			tradeFeed.PublishBook(topOfBook(engine, scale))
		}))
		logger.Info("Market-data feed enabled", map[string]interface{}{
			"client_buffer": cfg.Feed.ClientBuffer,
		})
	}

	// Create matching engine with storage
	engine = matching.NewEngineWithStores(orderStore, tradeStore, engineOpts...)
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("Failed to close engine", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Create engine holder for dependency injection
	engineHolder := handlers.NewEngineHolder(engine, cfg.Engine.Symbol, scale)

	// Setup routes with middleware
	handler := routes.SetupRoutes(engineHolder, tradeFeed)

	// Create HTTP server with config
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", map[string]interface{}{
			"port":    cfg.Server.Port,
			"address": fmt.Sprintf("http://localhost:%s", cfg.Server.Port),
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	logger.Info("Server started successfully", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...", nil)

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	logger.Info("Server exited successfully", nil)
}

// topOfBook snapshots the best quotes for the book feed.
func topOfBook(engine *matching.Engine, scale types.PriceScale) (*feed.Quote, *feed.Quote) {
	var bestBid, bestAsk *feed.Quote
	if price, ok := engine.BestBid(); ok {
		bestBid = &feed.Quote{
			Price:    scale.FormatPrice(price),
			Quantity: int64(engine.DepthAt(types.Buy, price)),
		}
	}
	if price, ok := engine.BestAsk(); ok {
		bestAsk = &feed.Quote{
			Price:    scale.FormatPrice(price),
			Quantity: int64(engine.DepthAt(types.Sell, price)),
		}
	}
	return bestBid, bestAsk
}

// buildStorageLayers constructs the storage layers based on configuration.
// Returns tiered stores stacking memory, Redis, Postgres, and the file
// audit log.
func buildStorageLayers(cfg *config.Config) (storage.OrderStore, storage.TradeStore) {
	var orderStores []storage.OrderStore
	var tradeStores []storage.TradeStore

	// L1: In-memory (fastest) - if enabled
	if cfg.Memory.Enabled {
		orderStores = append(orderStores, storage.NewInMemoryOrderStore(cfg.Memory.MaxOrders))
		tradeStores = append(tradeStores, storage.NewInMemoryTradeStore(cfg.Memory.MaxTrades))

		logger.Info("In-memory storage layer enabled", map[string]interface{}{
			"max_orders": cfg.Memory.MaxOrders,
			"max_trades": cfg.Memory.MaxTrades,
		})
	}

	// L2: Redis (distributed cache) - if enabled
	if cfg.Redis.Enabled {
		redisCfg := storage.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			OrderTTL:     cfg.Redis.OrderTTL,
			MaxTrades:    cfg.Redis.MaxTrades,
		}

		redisOrderStore, err := storage.NewRedisOrderStore(redisCfg)
		if err != nil {
			logger.Warn("Failed to connect to Redis, continuing without distributed cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			logger.Info("Redis cache connected successfully", map[string]interface{}{
				"host": cfg.Redis.Host,
				"port": cfg.Redis.Port,
			})
			orderStores = append(orderStores, redisOrderStore)

			if redisTradeStore, err := storage.NewRedisTradeStore(redisCfg); err == nil {
				tradeStores = append(tradeStores, redisTradeStore)
			}
		}
	}

	// L3: PostgreSQL (persistent storage) - if enabled
	if cfg.Database.Enabled {
		pgCfg := storage.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Name,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			MaxConns:        cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SSLMode:         cfg.Database.SSLMode,
		}

		pgOrderStore, err := storage.NewPostgresOrderStore(pgCfg)
		if err != nil {
			logger.Warn("Failed to connect to PostgreSQL, continuing without persistent storage", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			logger.Info("PostgreSQL connected successfully", map[string]interface{}{
				"host":     cfg.Database.Host,
				"database": cfg.Database.Name,
			})
			orderStores = append(orderStores, pgOrderStore)

			if pgTradeStore, err := storage.NewPostgresTradeStore(pgCfg); err == nil {
				tradeStores = append(tradeStores, pgTradeStore)
			}
		}
	}

	// L4: File storage (audit log) - always enabled
	fileTradeStore, err := storage.NewFileTradeStore(
		cfg.Engine.TradeLogPath,
		cfg.Engine.TradeLogMaxSizeMB,
		cfg.Engine.TradeLogBackups,
	)
	if err != nil {
		logger.Warn("Failed to open trade audit log", map[string]interface{}{
			"path":  cfg.Engine.TradeLogPath,
			"error": err.Error(),
		})
	} else {
		tradeStores = append(tradeStores, fileTradeStore)
		logger.Info("Trade audit log enabled", map[string]interface{}{
			"path": cfg.Engine.TradeLogPath,
		})
	}

	// Stack the layers fastest-first
	var orderStore storage.OrderStore
	var tradeStore storage.TradeStore

	if len(orderStores) == 1 {
		orderStore = orderStores[0]
	} else {
		orderStore = storage.NewTieredOrderStore(orderStores...)
	}

	if len(tradeStores) == 1 {
		tradeStore = tradeStores[0]
	} else {
		tradeStore = storage.NewTieredTradeStore(tradeStores...)
	}

	logger.Info("Storage layers initialized", map[string]interface{}{
		"order_layers": len(orderStores),
		"trade_layers": len(tradeStores),
	})

	return orderStore, tradeStore
}
