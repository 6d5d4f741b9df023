package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting for the agent and its tools.
// Required credentials fail loading by name; tunables fall back to the
// documented defaults.
type Config struct {
	AgentName string
	LogLevel  string

	InventoryAPIURL    string
	InventoryAPIKey    string
	InventoryAPISecret string

	TransportAPIURL    string
	TransportAPIKey    string
	TransportAPISecret string

	WeatherAPIURL string
	WeatherAPIKey string

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	RedisHost     string
	RedisPort     int
	RedisPassword string

	MainLoopInterval       time.Duration
	InventoryCheckInterval time.Duration
	ShipmentCheckInterval  time.Duration
	WeatherCheckInterval   time.Duration

	// Reroute when a shipment's delay exceeds this duration.
	RerouteDelayThreshold time.Duration
	// Alert when warehouse stock drops below this fraction of capacity.
	InventoryAlertThreshold float64
	// Replenishment aims for this fraction of capacity.
	InventoryTargetLevel float64

	MinVisibilityMeters int
	MaxWindSpeedKMH     int

	APITimeout       time.Duration
	APIRetryAttempts int
	APIRetryDelay    time.Duration

	NotifyQueue      bool
	NotifyWebhook    bool
	NotifyWebhookURL string
}

// loader accumulates every configuration problem so an operator sees the
// full list in one run instead of fixing variables one at a time.
type loader struct {
	errs []error
}

func (l *loader) require(name string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		l.errs = append(l.errs, fmt.Errorf("environment variable %s is not set", name))
	}
	return v
}

func (l *loader) optional(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func (l *loader) intVar(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("environment variable %s: invalid integer %q", name, raw))
		return fallback
	}
	return v
}

func (l *loader) floatVar(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("environment variable %s: invalid number %q", name, raw))
		return fallback
	}
	return v
}

func (l *loader) boolVar(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("environment variable %s: invalid boolean %q", name, raw))
		return fallback
	}
	return v
}

// seconds reads an interval expressed in whole seconds.
func (l *loader) seconds(name string, fallback int) time.Duration {
	return time.Duration(l.intVar(name, fallback)) * time.Second
}

// Load builds the configuration from the process environment.
func Load() (*Config, error) {
	l := &loader{}

	cfg := &Config{
		AgentName: l.optional("AGENT_NAME", "LogisticsCoordinator"),
		LogLevel:  l.optional("LOG_LEVEL", "info"),

		InventoryAPIURL:    l.require("INVENTORY_API_URL"),
		InventoryAPIKey:    l.require("INVENTORY_API_KEY"),
		InventoryAPISecret: l.require("INVENTORY_API_SECRET"),

		TransportAPIURL:    l.require("TRANSPORT_API_URL"),
		TransportAPIKey:    l.require("TRANSPORT_API_KEY"),
		TransportAPISecret: l.require("TRANSPORT_API_SECRET"),

		WeatherAPIURL: l.require("WEATHER_API_URL"),
		WeatherAPIKey: l.require("WEATHER_API_KEY"),

		DBHost:     l.require("DB_HOST"),
		DBPort:     l.intVar("DB_PORT", 5432),
		DBName:     l.require("DB_NAME"),
		DBUser:     l.require("DB_USER"),
		DBPassword: l.require("DB_PASSWORD"),

		RedisHost:     l.optional("REDIS_HOST", "localhost"),
		RedisPort:     l.intVar("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MainLoopInterval:       l.seconds("MAIN_LOOP_INTERVAL", 60),
		InventoryCheckInterval: l.seconds("INVENTORY_CHECK_INTERVAL", 300),
		ShipmentCheckInterval:  l.seconds("SHIPMENT_CHECK_INTERVAL", 120),
		WeatherCheckInterval:   l.seconds("WEATHER_CHECK_INTERVAL", 3600),

		RerouteDelayThreshold:   l.seconds("REROUTE_DELAY_THRESHOLD", 3600),
		InventoryAlertThreshold: l.floatVar("INVENTORY_ALERT_THRESHOLD", 0.2),
		InventoryTargetLevel:    l.floatVar("INVENTORY_TARGET_LEVEL", 0.7),

		MinVisibilityMeters: l.intVar("MIN_VISIBILITY_METERS", 200),
		MaxWindSpeedKMH:     l.intVar("MAX_WIND_SPEED_KMH", 80),

		APITimeout:       l.seconds("API_TIMEOUT_SECONDS", 30),
		APIRetryAttempts: l.intVar("API_RETRY_ATTEMPTS", 3),
		APIRetryDelay:    l.seconds("API_RETRY_DELAY_SECONDS", 5),

		NotifyQueue:      l.boolVar("NOTIFY_QUEUE", true),
		NotifyWebhook:    l.boolVar("NOTIFY_WEBHOOK", false),
		NotifyWebhookURL: strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_URL")),
	}

	if cfg.InventoryAlertThreshold < 0 || cfg.InventoryAlertThreshold > 1 {
		l.errs = append(l.errs, fmt.Errorf("INVENTORY_ALERT_THRESHOLD must be within [0, 1], got %v", cfg.InventoryAlertThreshold))
	}
	if cfg.NotifyWebhook && cfg.NotifyWebhookURL == "" {
		l.errs = append(l.errs, errors.New("NOTIFY_WEBHOOK_URL is required when NOTIFY_WEBHOOK is enabled"))
	}

	if len(l.errs) > 0 {
		return nil, fmt.Errorf("load config: %w", errors.Join(l.errs...))
	}

	return cfg, nil
}

// DatabaseURL assembles a postgres connection string from the DB_* variables.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	return u.String()
}

// RedisAddr returns the host:port address for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
