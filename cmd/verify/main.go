package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/hbsurial/logistics-coordination-agent/internal/adapters/cache"
	"github.com/hbsurial/logistics-coordination-agent/internal/config"
	"github.com/hbsurial/logistics-coordination-agent/internal/platform/db"
)

// verify checks an environment before the agent is started there:
// configuration completeness, postgres, redis, and reachability of the
// three external APIs. Every check runs; any failure exits non-zero.
func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found (using environment variables)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	failed := 0

	cfg, err := config.Load()
	report("configuration", err, &failed)
	if cfg == nil {
		// Nothing else is checkable without configuration.
		os.Exit(1)
	}

	sqlDB, err := db.Open(cfg.DatabaseURL())
	report("postgres", err, &failed)
	if sqlDB != nil {
		sqlDB.Close()
	}

	redisClient, err := cache.Dial(ctx, cfg.RedisAddr(), cfg.RedisPassword)
	report("redis", err, &failed)
	if redisClient != nil {
		redisClient.Close()
	}

	report("inventory api", reachable(ctx, cfg.InventoryAPIURL), &failed)
	report("transport api", reachable(ctx, cfg.TransportAPIURL), &failed)
	report("weather api", reachable(ctx, cfg.WeatherAPIURL), &failed)

	if failed > 0 {
		fmt.Printf("\n%d check(s) failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("\nall checks passed")
}

func report(name string, err error, failed *int) {
	if err != nil {
		fmt.Printf("FAIL  %-15s %v\n", name, err)
		*failed++
		return
	}
	fmt.Printf("ok    %s\n", name)
}

// reachable treats any HTTP response as success. The probe verifies
// the host answers, not that credentials are valid.
func reachable(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
