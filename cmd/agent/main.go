package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/hbsurial/logistics-coordination-agent/internal/adapters/cache"
	"github.com/hbsurial/logistics-coordination-agent/internal/adapters/connectors"
	"github.com/hbsurial/logistics-coordination-agent/internal/adapters/notify"
	"github.com/hbsurial/logistics-coordination-agent/internal/adapters/repositories"
	"github.com/hbsurial/logistics-coordination-agent/internal/agent"
	"github.com/hbsurial/logistics-coordination-agent/internal/config"
	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
	"github.com/hbsurial/logistics-coordination-agent/internal/platform/db"
)

// Cached state snapshots outlive the longest poll interval by a wide
// margin but never survive a day.
const stateCacheTTL = 24 * time.Hour

// main is the application composition root. It wires the concrete
// adapters (postgres, redis, the external APIs) behind ports and starts
// the coordination loop.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "logistics",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Open(cfg.DatabaseURL())
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := repositories.InitSchema(sqlDB); err != nil {
		logger.Error("schema initialization failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := cache.Dial(ctx, cfg.RedisAddr(), cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	inventory, err := connectors.NewInventoryAPI(cfg, logger)
	if err != nil {
		logger.Error("inventory connector setup failed", "error", err)
		os.Exit(1)
	}
	transport, err := connectors.NewTransportAPI(cfg, logger)
	if err != nil {
		logger.Error("transport connector setup failed", "error", err)
		os.Exit(1)
	}
	weather, err := connectors.NewWeatherAPI(cfg, logger)
	if err != nil {
		logger.Error("weather connector setup failed", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewManager(logger)
	if cfg.NotifyQueue {
		notifier.AddSink("queue", notify.NewRedisQueue(redisClient, logger), domain.SeverityLow)
	}
	if cfg.NotifyWebhook {
		webhook, err := notify.NewWebhook(cfg.NotifyWebhookURL, cfg.AgentName, cfg.APITimeout, logger)
		if err != nil {
			logger.Error("webhook notifier setup failed", "error", err)
			os.Exit(1)
		}
		// The webhook is for humans; routine low-severity events stay
		// on the queue.
		notifier.AddSink("webhook", webhook, domain.SeverityMedium)
	}

	a := agent.New(cfg, agent.Deps{
		Inventory: inventory,
		Transport: transport,
		Weather:   weather,
		Store:     repositories.NewPostgresStore(sqlDB, logger),
		Cache:     cache.NewRedisStateCache(redisClient, stateCacheTTL, logger),
		Distances: repositories.NewSQLDistanceCache(sqlDB),
		Notifier:  notifier,
	}, logger)

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("agent stopped with error", "error", err)
		os.Exit(1)
	}
}
