package main

import (
	"context" // context package is needed for Redis operations

	"bank_ledger/internal/api"       // Custom package for API handlers
	"bank_ledger/internal/config"    // Custom package for configuration
	"bank_ledger/internal/db"        // Custom package for database bootstrap
	"bank_ledger/internal/ledger"    // Custom package for the account ledger
	"bank_ledger/internal/statement" // Custom package for statement rendering
	"bank_ledger/internal/store"     // Custom package for the ledger store
	"bank_ledger/internal/utils"     // Custom package for the Redis cache

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database and make sure the transactions table exists
	gdb, err := db.Connect(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	ledgerStore := store.NewGormStore(gdb) // One storage handle shared by every request

	limit, err := ledger.ParseOverdraftLimit(cfg.OverdraftLimit)
	if err != nil {
		logrus.Fatalf("bad LEDGER_OVERDRAFT_LIMIT: %v", err)
	}
	opts := []ledger.Option{
		ledger.WithPolicy(ledger.Policy{Strict: cfg.Strict, OverdraftLimit: limit, MaxRetries: cfg.MaxRetries}),
		ledger.WithRenderer(statement.Renderer{Grouping: cfg.Grouping}),
	}

	// Setup Redis client when configured
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		opts = append(opts, ledger.WithCache(utils.NewRedisCache(redisClient, "ledger:"), cfg.CacheTTL))
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{
		Ledger:           ledger.New(ledgerStore, opts...),
		Store:            ledgerStore,
		DefaultAccountID: cfg.DefaultAccountID,
	})
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
